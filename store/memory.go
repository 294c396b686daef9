package store

import (
	"context"

	"github.com/gaurav-prasanna/letterpipe/core"
)

// Memory holds the collection in memory. Load returns a copy so callers
// mutate their own collection until they Save.
type Memory struct {
	records []core.Record
	Saves   int
}

// NewMemory creates a Memory store seeded with records.
func NewMemory(records ...core.Record) *Memory {
	return &Memory{records: cloneRecords(records)}
}

// Load returns a copy of the stored collection.
func (m *Memory) Load(_ context.Context) (*core.Collection, error) {
	return normalize(core.NewCollection(cloneRecords(m.records)...)), nil
}

// Save replaces the stored collection.
func (m *Memory) Save(_ context.Context, c *core.Collection) error {
	m.records = cloneRecords(normalize(c).Newsletters)
	m.Saves++
	return nil
}

// Records returns a copy of what was last saved.
func (m *Memory) Records() []core.Record {
	return cloneRecords(m.records)
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

func cloneRecords(in []core.Record) []core.Record {
	out := make([]core.Record, len(in))
	for i, r := range in {
		r.Tags = append([]string(nil), r.Tags...)
		out[i] = r
	}
	return out
}
