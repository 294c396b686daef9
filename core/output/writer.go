// Package output handles file naming and writing for record exports.
// Files are named after the record ID (e.g. 2025-12-02-weekly-digest.md).
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data as <id><ext> and returns the written path.
func (w *Writer) Write(id string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, Filename(id)+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// Filename makes a record ID safe to use as a file name.
// Example: 2025-12-02-café/news → 2025-12-02-caf__news
func Filename(id string) string {
	name := sanitize(id)
	if strings.Trim(name, "_") == "" {
		return "record"
	}
	return name
}

// sanitize replaces everything except ASCII letters, digits and hyphens
// with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
