package configstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Load reads a persisted JSON document from path. A file that exists but
// cannot be parsed fails with a *FormatError; no in-memory state is touched.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return decodeJSON(path, data)
}

// decodeJSON turns raw JSON bytes into a document via the cty JSON codec,
// which infers the value types directly from the JSON structure.
func decodeJSON(path string, data []byte) (*Document, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	v, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	if !isMapping(v) {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("top level is %s, want an object", v.Type().FriendlyName())}
	}
	return NewDocument(v), nil
}

// decodeYAML turns YAML bytes into a document.
func decodeYAML(path string, data []byte) (*Document, error) {
	var native map[string]any
	if err := yaml.Unmarshal(data, &native); err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	if native == nil {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("document is empty")}
	}
	v, err := nativeToCty(normalizeYAML(native).(map[string]any))
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return NewDocument(v), nil
}

// normalizeYAML rewrites the map[any]any nodes older YAML emitters produce
// into the map[string]any shape nativeToCty expects.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return v
	}
}

// Encode serializes the document for the given destination path, choosing
// the format from the file extension (.json by default, .yaml/.yml for YAML).
// JSON output is indented with sorted keys so saved files diff cleanly.
func (d *Document) Encode(path string) ([]byte, error) {
	native, err := d.Native()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(native)
	default:
		return json.MarshalIndent(native, "", "    ")
	}
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so a crash mid-write can never leave a truncated
// config behind. The persisted file is the only durable state in the system.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
