package configstore

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a dotted path whose target (or one of its intermediate
// mapping segments) does not exist in the document. Callers are expected to
// substitute their own default value.
var ErrNotFound = errors.New("config key not found")

// FormatError reports a persisted configuration file that exists but could
// not be parsed. The raw decoder error is retained for operator inspection.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("config file %s is not parseable: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// TypeMismatchError reports a dotted-path traversal that hit an existing
// segment which is not a mapping. The document is left unchanged.
type TypeMismatchError struct {
	Path    string // the full dotted path being traversed
	Segment string // the segment that resolved to a non-mapping value
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("config path %q: segment %q is not a mapping", e.Path, e.Segment)
}

// MissingSectionError reports an imported document that is missing one of the
// expected top-level sections. The live document is not replaced.
type MissingSectionError struct {
	Path    string
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("import %s: missing required section %q", e.Path, e.Section)
}
