// Package source provides the message sources for ingestion: a directory
// of saved .eml files and a single mbox archive. Sources only enumerate;
// decoding belongs to the pipeline.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/letterpipe/core"
)

// Dir lists the message files of one directory.
type Dir struct {
	Path string
}

// NewDir creates a Dir source for path.
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// List returns the directory's message files sorted by filename.
// Subdirectories are not descended into.
func (d *Dir) List() ([]core.RawMessage, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", d.Path, err)
	}

	var msgs []core.RawMessage
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsMessageFile(entry.Name()) {
			continue
		}
		msgs = append(msgs, FileMessage(filepath.Join(d.Path, entry.Name())))
	}
	return msgs, nil
}

// FileMessage wraps a file on disk as a RawMessage named after its base name.
func FileMessage(path string) core.RawMessage {
	return core.RawMessage{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesMessage wraps in-memory bytes as a RawMessage.
func BytesMessage(name string, data []byte) core.RawMessage {
	return core.RawMessage{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Static is a fixed, in-memory list of messages.
type Static []core.RawMessage

// List returns the messages as given.
func (s Static) List() ([]core.RawMessage, error) {
	return s, nil
}
