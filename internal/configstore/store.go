package configstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cryodl/cryodl/internal/ctxlog"
)

// Store binds a Document to its on-disk location. One Store instance is
// constructed at startup and handed to every component; nothing else reads
// or writes the config file.
type Store struct {
	path string
	doc  *Document
}

// Open loads the document at path, or builds the default document when the
// file does not exist yet (the file is only written on the first Save). A
// file that exists but fails to parse is a fatal load error; the defaults
// are never silently substituted over a corrupt file.
func Open(ctx context.Context, path string) (*Store, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Config file not found, using defaults.", "path", path)
		return &Store{path: path, doc: DefaultDocument()}, nil
	}

	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded.", "path", path)
	return &Store{path: path, doc: doc}, nil
}

// NewInMemory builds a store around an isolated document with no backing
// file path resolution beyond the one given. Tests use this to avoid
// touching a real config file.
func NewInMemory(path string, doc *Document) *Store {
	return &Store{path: path, doc: doc}
}

// Document returns the live document.
func (s *Store) Document() *Document { return s.doc }

// Path returns the on-disk location backing this store.
func (s *Store) Path() string { return s.path }

// Exists reports whether the backing file has been written yet.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Reset replaces the live document with the defaults. The file is not
// rewritten until Save.
func (s *Store) Reset() {
	s.doc = DefaultDocument()
}

// Save writes the live document back to the store's path.
func (s *Store) Save(ctx context.Context) error {
	if err := s.writeTo(s.path); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Configuration saved.", "path", s.path)
	return nil
}

// Export writes the live document to an arbitrary path, choosing JSON or
// YAML from the extension.
func (s *Store) Export(ctx context.Context, path string) error {
	if err := s.writeTo(path); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Configuration exported.", "path", path)
	return nil
}

// Import replaces the live document wholesale with the parsed contents of
// path. The replacement is two-phase: the file is parsed and validated into
// a staging document first, and only a document carrying every required
// top-level section is swapped in. A malformed import therefore never leaves
// the store partially overwritten. JSON, YAML, and HCL inputs are accepted.
func (s *Store) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}

	var staged *Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		staged, err = decodeYAML(path, data)
	case ".hcl":
		staged, err = decodeHCL(path, data)
	default:
		staged, err = decodeJSON(path, data)
	}
	if err != nil {
		return err
	}

	for _, section := range RequiredSections {
		if !staged.HasSection(section) {
			return &MissingSectionError{Path: path, Section: section}
		}
	}

	s.doc = staged
	if err := s.Save(ctx); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Configuration imported.", "path", path)
	return nil
}

func (s *Store) writeTo(path string) error {
	data, err := s.doc.Encode(path)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}
