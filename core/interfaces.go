// Package core defines the pipeline types and interfaces for letterpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Part is a node in a message's content tree.
type Part struct {
	ContentType string // lowercased type/subtype, e.g. "text/html"
	Body        string // decoded text; empty for multipart containers
	Children    []*Part
}

// Message is a parsed email: the headers the pipeline needs plus its part tree.
type Message struct {
	Subject    string
	HasSubject bool
	Date       string // raw Date header, may be empty or malformed
	Root       *Part
	// Defects lists damage that was worked around while decoding.
	Defects []error
}

// RawMessage is one undecoded message handed out by a MessageSource.
type RawMessage struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Record is one newsletter entry in the persisted collection.
type Record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	ContentHTML string   `json:"content_html"`
}

// Collection is the ordered set of records. No two records share an ID.
type Collection struct {
	Newsletters []Record `json:"newsletters"`

	index map[string]bool
}

// NewCollection creates a collection holding the given records in order.
// Records whose ID was already seen are dropped.
func NewCollection(records ...Record) *Collection {
	c := &Collection{Newsletters: make([]Record, 0, len(records))}
	for _, r := range records {
		c.Append(r)
	}
	return c
}

func (c *Collection) ensureIndex() {
	if c.index != nil {
		return
	}
	c.index = make(map[string]bool, len(c.Newsletters))
	for _, r := range c.Newsletters {
		c.index[r.ID] = true
	}
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.Newsletters)
}

// Has reports whether a record with the given ID exists.
func (c *Collection) Has(id string) bool {
	c.ensureIndex()
	return c.index[id]
}

// Append adds r at the end unless its ID is already present.
// It reports whether the record was added.
func (c *Collection) Append(r Record) bool {
	if c.Has(r.ID) {
		return false
	}
	c.index[r.ID] = true
	c.Newsletters = append(c.Newsletters, r)
	return true
}

// Find returns the record with the given ID.
func (c *Collection) Find(id string) (Record, bool) {
	for _, r := range c.Newsletters {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Remove deletes every record whose ID equals id and returns how many were removed.
func (c *Collection) Remove(id string) int {
	kept := c.Newsletters[:0]
	removed := 0
	for _, r := range c.Newsletters {
		if r.ID == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	c.Newsletters = kept
	c.index = nil
	return removed
}

// Filter returns the records whose title or summary contains query,
// ignoring case. An empty query matches everything.
func (c *Collection) Filter(query string) []Record {
	q := strings.ToLower(query)
	var out []Record
	for _, r := range c.Newsletters {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Summary), q) {
			out = append(out, r)
		}
	}
	return out
}

// MessageSource enumerates raw messages in a deterministic order.
type MessageSource interface {
	List() ([]RawMessage, error)
}

// MessageParser decodes a raw internet message into a Message.
type MessageParser interface {
	Parse(r io.Reader) (*Message, error)
}

// CollectionStore loads and saves the whole collection at once.
type CollectionStore interface {
	Load(ctx context.Context) (*Collection, error)
	Save(ctx context.Context, c *Collection) error
}

// DateNormalizer turns a Date header into a YYYY-MM-DD string.
type DateNormalizer interface {
	Normalize(header string) string
}

// Extractor picks the best rendering of a message and reduces it to an HTML fragment.
type Extractor interface {
	Extract(msg *Message) (string, error)
}

// Summarizer produces a short plain-text preview from an HTML fragment.
type Summarizer interface {
	Summarize(html string) string
}

// Tagger derives topic tags from a subject line.
type Tagger interface {
	Tags(subject string) []string
}

// Normalizer converts an HTML fragment into Markdown (the canonical export format).
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts Markdown (and the record it came from) into a final output format.
type Renderer interface {
	Render(markdown string, rec Record) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// ComponentLogger returns logger tagged with a component attribute.
// A nil logger yields one that discards everything.
func ComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logger.With(slog.String("component", component))
}
