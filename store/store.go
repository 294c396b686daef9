// Package store provides CollectionStore backends. Every backend loads and
// saves the whole collection at once; none of them lock, so two runs
// against the same store race and the last save wins.
package store

import (
	"errors"
	"fmt"

	"github.com/gaurav-prasanna/letterpipe/core"
)

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("unknown store driver")

// Driver names accepted by Open.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Store is a CollectionStore that may hold resources.
type Store interface {
	core.CollectionStore
	Close() error
}

// Open returns the backend named by driver, rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", DriverJSON:
		return NewJSONFile(path), nil
	case DriverSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// normalize makes a loaded collection safe to append to and to serialize.
func normalize(c *core.Collection) *core.Collection {
	if c == nil {
		return core.NewCollection()
	}
	for i := range c.Newsletters {
		if c.Newsletters[i].Tags == nil {
			c.Newsletters[i].Tags = []string{}
		}
	}
	if c.Newsletters == nil {
		c.Newsletters = []core.Record{}
	}
	return c
}
