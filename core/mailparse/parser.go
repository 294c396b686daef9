// Package mailparse implements the MessageParser interface.
// It decodes an RFC 5322 message into a core.Message: the Subject and Date
// headers plus a tree of parts whose bodies have their transfer encoding
// and charset already undone. Attached messages (message/rfc822) are
// walked like multiparts, with the attached message as the only child.
package mailparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/gaurav-prasanna/letterpipe/core"
)

const (
	defaultContentType = "text/plain"
	mimeMessage        = "message/rfc822"
)

// Parser reads messages with go-message.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads a whole message from r. Unknown charsets and transfer
// encodings are tolerated: the affected body is kept undecoded. Damaged
// bodies (truncated multiparts, bad base64) keep what could be decoded and
// are reported in Message.Defects; only an unreadable header is an error.
func (p *Parser) Parse(r io.Reader) (*core.Message, error) {
	entity, err := message.Read(r)
	if err != nil && !tolerable(err) {
		return nil, fmt.Errorf("reading message: %w", err)
	}

	header := mail.Header{Header: entity.Header}
	subject, err := header.Subject()
	if err != nil {
		// Keep the raw value when encoded words cannot be decoded.
		subject = header.Get("Subject")
	}

	var w walker
	root := w.readPart(entity)

	return &core.Message{
		Subject:    subject,
		HasSubject: header.Has("Subject"),
		Date:       header.Get("Date"),
		Root:       root,
		Defects:    w.defects,
	}, nil
}

// walker converts an entity tree into core.Parts, collecting defects.
type walker struct {
	defects []error
}

// readPart converts an entity (and, for multipart entities and attached
// messages, its children) into a core.Part. Bodies are consumed in order.
func (w *walker) readPart(e *message.Entity) *core.Part {
	part := &core.Part{ContentType: contentType(e.Header)}

	if mr := e.MultipartReader(); mr != nil {
		for {
			child, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil && (child == nil || !tolerable(err)) {
				// Missing closing boundary or a mangled part header: keep
				// the parts read so far.
				w.defects = append(w.defects, fmt.Errorf("reading %s part: %w", part.ContentType, err))
				break
			}
			part.Children = append(part.Children, w.readPart(child))
		}
		return part
	}

	body, err := io.ReadAll(e.Body)
	if err != nil {
		w.defects = append(w.defects, fmt.Errorf("reading %s body: %w", part.ContentType, err))
	}

	if part.ContentType == mimeMessage {
		inner, err := message.Read(bytes.NewReader(body))
		if err == nil || (inner != nil && tolerable(err)) {
			part.Children = append(part.Children, w.readPart(inner))
			return part
		}
		w.defects = append(w.defects, fmt.Errorf("reading attached message: %w", err))
	}

	part.Body = string(body)
	return part
}

// contentType returns the lowercased media type, defaulting to text/plain
// when the header is absent or cannot be parsed.
func contentType(h message.Header) string {
	t, _, err := h.ContentType()
	if err != nil || t == "" {
		return defaultContentType
	}
	return strings.ToLower(t)
}

func tolerable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}
