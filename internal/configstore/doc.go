// Package configstore implements the hierarchical, persisted configuration
// document that mediates every tool invocation in the console.
//
// Values are modelled as a cty value tree (a tagged union of string, number,
// bool, mapping, and null), addressed by dotted paths. The canonical on-disk
// format is JSON; export and import additionally speak YAML and HCL. Saves
// are atomic full-file replacements because the config file is the only
// durable state in the whole system.
package configstore
