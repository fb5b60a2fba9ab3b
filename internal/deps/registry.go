// Package deps manages the named external-tool records layered on top of
// the configuration document: where each wrapped package lives on disk,
// which version is installed, and whether it is enabled.
//
// Validation is deliberately lazy and re-executed on demand rather than
// cached: tool installations move and upgrade outside the console's control,
// so a path that was valid yesterday proves nothing today.
package deps

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/cryodl/cryodl/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Record describes one external tool known to the console.
type Record struct {
	Name    string
	Path    string
	Version string
	Enabled bool
}

// InvalidError reports a tool whose stored path no longer resolves to an
// executable; operations that need the tool refuse to proceed.
type InvalidError struct {
	Name string
	Path string
}

func (e *InvalidError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dependency %q has no configured path", e.Name)
	}
	return fmt.Sprintf("dependency %q path %q is missing or not executable", e.Name, e.Path)
}

// Registry reads and writes dependency records through the shared store.
type Registry struct {
	store *configstore.Store
	// extras are names added at runtime beyond the supported list, in the
	// order they were first seen. Names already persisted from an earlier
	// session are seeded in sorted order for a stable listing.
	extras []string
}

// New builds a registry over the shared store.
func New(store *configstore.Store) *Registry {
	r := &Registry{store: store}
	known := make(map[string]bool, len(configstore.SupportedTools))
	for _, name := range configstore.SupportedTools {
		known[name] = true
	}
	var seeded []string
	for _, name := range r.dependencyNames() {
		if !known[name] {
			seeded = append(seeded, name)
		}
	}
	sort.Strings(seeded)
	r.extras = seeded
	return r
}

// Update upserts a dependency record. The record is enabled exactly when a
// non-empty path was supplied and that path exists at call time; it is not
// re-validated afterwards. The document is saved immediately.
func (r *Registry) Update(ctx context.Context, name, path, version string) error {
	doc := r.store.Document()
	enabled := path != "" && pathExists(path)

	base := "dependencies." + name
	if err := doc.Set(base+".path", cty.StringVal(path)); err != nil {
		return err
	}
	if err := doc.Set(base+".version", cty.StringVal(version)); err != nil {
		return err
	}
	if err := doc.Set(base+".enabled", cty.BoolVal(enabled)); err != nil {
		return err
	}

	if !r.isKnown(name) {
		r.extras = append(r.extras, name)
	}

	if err := r.store.Save(ctx); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Dependency updated.", "name", name, "path", path, "enabled", enabled)
	return nil
}

// Validate re-checks, at call time, that the named record exists, that its
// path is set, and that the path points to an executable file. An absent
// record is not an error, just an unmet precondition, reported as false.
func (r *Registry) Validate(name string) bool {
	rec, ok := r.get(name)
	if !ok || rec.Path == "" {
		return false
	}
	info, err := os.Stat(rec.Path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// Require returns an *InvalidError when the named tool cannot be used right
// now. Callers gate tool invocations on it.
func (r *Registry) Require(name string) error {
	if r.Validate(name) {
		return nil
	}
	rec, _ := r.get(name)
	return &InvalidError{Name: name, Path: rec.Path}
}

// List returns every known record in stable order: the supported-tool list
// first, then runtime additions in the order they were added.
func (r *Registry) List() []Record {
	present := make(map[string]bool)
	for _, name := range r.dependencyNames() {
		present[name] = true
	}

	var out []Record
	appendRec := func(name string) {
		if rec, ok := r.get(name); ok {
			out = append(out, rec)
		}
	}
	for _, name := range configstore.SupportedTools {
		if present[name] {
			appendRec(name)
		}
	}
	for _, name := range r.extras {
		if present[name] {
			appendRec(name)
		}
	}
	return out
}

// Enabled returns List filtered to enabled records.
func (r *Registry) Enabled() []Record {
	var out []Record
	for _, rec := range r.List() {
		if rec.Enabled {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Registry) get(name string) (Record, bool) {
	doc := r.store.Document()
	base := "dependencies." + name
	if _, err := doc.Get(base); err != nil {
		return Record{Name: name}, false
	}
	path, err := doc.GetString(base+".path", "")
	if err != nil {
		return Record{Name: name}, false
	}
	version, err := doc.GetString(base+".version", "")
	if err != nil {
		return Record{Name: name}, false
	}
	enabled, err := doc.GetBool(base+".enabled", false)
	if err != nil {
		return Record{Name: name}, false
	}
	return Record{Name: name, Path: path, Version: version, Enabled: enabled}, true
}

func (r *Registry) dependencyNames() []string {
	section, err := r.store.Document().Get("dependencies")
	if err != nil || section.IsNull() || !section.CanIterateElements() {
		return nil
	}
	var names []string
	it := section.ElementIterator()
	for it.Next() {
		kv, _ := it.Element()
		names = append(names, kv.AsString())
	}
	sort.Strings(names)
	return names
}

func (r *Registry) isKnown(name string) bool {
	for _, n := range configstore.SupportedTools {
		if n == name {
			return true
		}
	}
	for _, n := range r.extras {
		if n == name {
			return true
		}
	}
	return false
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
