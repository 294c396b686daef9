package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/emersion/go-mbox"
	"github.com/gaurav-prasanna/letterpipe/core"
)

// Mbox lists the messages stored in one mbox archive, in file order.
type Mbox struct {
	Path string
}

// NewMbox creates an Mbox source for path.
func NewMbox(path string) *Mbox {
	return &Mbox{Path: path}
}

// List reads the archive once and returns each message as "<file>#<n>",
// numbered from 1. Messages are held in memory.
func (m *Mbox) List() ([]core.RawMessage, error) {
	f, err := os.Open(m.Path)
	if err != nil {
		return nil, fmt.Errorf("opening mbox %s: %w", m.Path, err)
	}
	defer f.Close()

	return ReadMbox(filepath.Base(m.Path), f)
}

// ReadMbox splits an mbox stream into messages named after name.
func ReadMbox(name string, r io.Reader) ([]core.RawMessage, error) {
	reader := mbox.NewReader(r)

	var msgs []core.RawMessage
	for i := 1; ; i++ {
		mr, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return msgs, fmt.Errorf("reading message %d of %s: %w", i, name, err)
		}
		data, err := io.ReadAll(mr)
		if err != nil {
			return msgs, fmt.Errorf("reading message %d of %s: %w", i, name, err)
		}
		msgs = append(msgs, BytesMessage(fmt.Sprintf("%s#%d", name, i), data))
	}
	return msgs, nil
}
