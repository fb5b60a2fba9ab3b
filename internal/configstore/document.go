package configstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Document is the in-memory configuration tree: string-keyed mappings with
// string, number, bool, or null leaves. Leaves are addressed by dotted paths
// such as "dependencies.topaz.path". The tree is schema-light:
// Set never validates a value against a schema; that is the caller's job
// (the dependency registry being the canonical example).
//
// A Document is not safe for concurrent mutation. The console is single-user
// and single-threaded, so one instance is shared by every component.
type Document struct {
	root cty.Value
}

// NewDocument wraps an existing mapping value. It panics if root is not a
// mapping, because every document operation assumes one.
func NewDocument(root cty.Value) *Document {
	if !isMapping(root) {
		panic("configstore: document root must be a mapping")
	}
	return &Document{root: root}
}

// Root returns the underlying value tree.
func (d *Document) Root() cty.Value { return d.root }

// Get traverses the dotted path and returns the addressed value. A missing
// segment yields ErrNotFound; an intermediate segment that exists but is not
// a mapping yields a *TypeMismatchError.
func (d *Document) Get(path string) (cty.Value, error) {
	segs := strings.Split(path, ".")
	cur := d.root
	for i, seg := range segs {
		if !isMapping(cur) {
			return cty.NilVal, &TypeMismatchError{Path: path, Segment: segs[i-1]}
		}
		attrs := valueMap(cur)
		next, ok := attrs[seg]
		if !ok {
			return cty.NilVal, fmt.Errorf("%q: %w", path, ErrNotFound)
		}
		cur = next
	}
	return cur, nil
}

// GetString returns the string at path, or def when the path is absent.
// A non-string leaf or a traversal type mismatch is an error.
func (d *Document) GetString(path, def string) (string, error) {
	v, err := d.Get(path)
	if err != nil {
		if isNotFound(err) {
			return def, nil
		}
		return "", err
	}
	if v.IsNull() || v.Type() != cty.String {
		return "", fmt.Errorf("config path %q is not a string", path)
	}
	return v.AsString(), nil
}

// GetInt returns the integer at path, or def when the path is absent.
func (d *Document) GetInt(path string, def int) (int, error) {
	v, err := d.Get(path)
	if err != nil {
		if isNotFound(err) {
			return def, nil
		}
		return 0, err
	}
	var n int
	if err := gocty.FromCtyValue(v, &n); err != nil {
		return 0, fmt.Errorf("config path %q is not an integer: %w", path, err)
	}
	return n, nil
}

// GetBool returns the boolean at path, or def when the path is absent.
func (d *Document) GetBool(path string, def bool) (bool, error) {
	v, err := d.Get(path)
	if err != nil {
		if isNotFound(err) {
			return def, nil
		}
		return false, err
	}
	if v.IsNull() || v.Type() != cty.Bool {
		return false, fmt.Errorf("config path %q is not a boolean", path)
	}
	return v.True(), nil
}

// Set writes value at the dotted path, creating intermediate mappings as
// needed. An existing intermediate segment that is not a mapping yields a
// *TypeMismatchError and leaves the document untouched; the cty tree is
// immutable, so a failed rebuild can never partially apply.
func (d *Document) Set(path string, value cty.Value) error {
	segs := strings.Split(path, ".")
	newRoot, err := setPath(d.root, path, segs, value)
	if err != nil {
		return err
	}
	d.root = newRoot
	return nil
}

// setPath rebuilds the mapping spine from cur down to the leaf.
func setPath(cur cty.Value, fullPath string, segs []string, value cty.Value) (cty.Value, error) {
	if len(segs) == 0 {
		return value, nil
	}

	var attrs map[string]cty.Value
	switch {
	case cur == cty.NilVal || cur.IsNull():
		attrs = make(map[string]cty.Value)
	case isMapping(cur):
		attrs = valueMap(cur)
	default:
		return cty.NilVal, &TypeMismatchError{Path: fullPath, Segment: segs[0]}
	}

	child, ok := attrs[segs[0]]
	if !ok {
		child = cty.NilVal
	}
	if len(segs) > 1 && child != cty.NilVal && !child.IsNull() && !isMapping(child) {
		return cty.NilVal, &TypeMismatchError{Path: fullPath, Segment: segs[0]}
	}
	next, err := setPath(child, fullPath, segs[1:], value)
	if err != nil {
		return cty.NilVal, err
	}
	attrs[segs[0]] = next
	if len(attrs) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(attrs), nil
}

// Native converts the whole document into plain Go maps and scalars, the
// form consumed by the JSON and YAML encoders.
func (d *Document) Native() (map[string]any, error) {
	n, err := ctyToNative(d.root)
	if err != nil {
		return nil, err
	}
	m, ok := n.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root converted to %T, want a mapping", n)
	}
	return m, nil
}

// HasSection reports whether a top-level mapping with the given name exists.
func (d *Document) HasSection(name string) bool {
	attrs := valueMap(d.root)
	v, ok := attrs[name]
	return ok && isMapping(v)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
