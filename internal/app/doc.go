// Package app wires the console's components together. It defines the App
// struct, its configuration, and startup: logger setup, environment loading,
// configuration store opening, and construction of the tool registry, the
// scheduler builder, the launcher, and the sequence fetcher.
package app
