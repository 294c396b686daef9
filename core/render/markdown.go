// Package render provides the export renderers for stored records.
// This file implements the Markdown renderer: a short header built from
// the record followed by the normalized body.
package render

import (
	"strings"

	"github.com/gaurav-prasanna/letterpipe/core"
)

// MarkdownRenderer writes a record as a standalone Markdown document.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render prefixes the Markdown body with the record's title, date and tags.
func (r *MarkdownRenderer) Render(markdown string, rec core.Record) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# " + rec.Title + "\n\n")
	b.WriteString(publishedLine(rec) + "\n\n")
	if len(rec.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(rec.Tags, ", ") + "\n\n")
	}
	if body := strings.TrimSpace(markdown); body != "" {
		b.WriteString(body + "\n")
	}
	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func publishedLine(rec core.Record) string {
	return "Published on " + rec.Date
}
