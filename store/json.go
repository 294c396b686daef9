package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/letterpipe/core"
)

// JSONFile keeps the collection in one JSON document:
//
//	{ "newsletters": [ { "id": ..., "title": ..., ... } ] }
type JSONFile struct {
	Path string
}

// NewJSONFile creates a JSONFile store at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load reads the whole document. A missing file is an empty collection;
// an unreadable or corrupt file is an error. Only the Record fields are
// read, so fields other tools added to a record are gone after the next Save.
func (s *JSONFile) Load(_ context.Context) (*core.Collection, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return core.NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}

	var c core.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.Path, err)
	}
	return normalize(&c), nil
}

// Save writes the whole document with 4-space indentation. The file is
// replaced by rename so readers never see a half-written document.
func (s *JSONFile) Save(_ context.Context, c *core.Collection) error {
	data, err := Marshal(normalize(c))
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	return nil
}

// Close is a no-op.
func (s *JSONFile) Close() error {
	return nil
}

// Marshal encodes a collection the way JSONFile stores it. HTML in
// content is written as-is rather than as \u003c escapes.
func Marshal(c *core.Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshaling collection: %w", err)
	}
	return buf.Bytes(), nil
}
