// Package extract implements the Extractor interface.
// It picks the best rendering of a message and reduces it to an embeddable
// fragment by:
//  1. Taking the first text/html part (depth-first), else the first
//     text/plain part wrapped in <p>
//  2. Unwrapping full documents down to the inner markup of <body>
package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/letterpipe/core"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	mimeHTML  = "text/html"
	mimePlain = "text/plain"
)

// ContentExtractor selects and reduces message content.
type ContentExtractor struct {
	sanitizer *Sanitizer
}

// Option configures a ContentExtractor.
type Option func(*ContentExtractor)

// WithSanitizer runs the reduced fragment through s.
func WithSanitizer(s *Sanitizer) Option {
	return func(e *ContentExtractor) { e.sanitizer = s }
}

// New creates a ContentExtractor.
func New(opts ...Option) *ContentExtractor {
	e := &ContentExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the message's content as an HTML fragment.
// A message with neither an HTML nor a plain-text part yields "".
func (e *ContentExtractor) Extract(msg *core.Message) (string, error) {
	if msg == nil {
		return "", nil
	}

	content := ""
	if part := FindPart(msg.Root, mimeHTML); part != nil {
		content = part.Body
	}
	if content == "" {
		if part := FindPart(msg.Root, mimePlain); part != nil {
			content = WrapPlain(part.Body)
		}
	}

	content, err := UnwrapBody(content)
	if err != nil {
		return "", err
	}

	if e.sanitizer != nil {
		content = e.sanitizer.Sanitize(content)
	}
	return content, nil
}

// FindPart returns the first part in depth-first order whose content type
// is contentType, or nil.
func FindPart(root *core.Part, contentType string) *core.Part {
	if root == nil {
		return nil
	}
	if root.ContentType == contentType {
		return root
	}
	for _, child := range root.Children {
		if found := FindPart(child, contentType); found != nil {
			return found
		}
	}
	return nil
}

// WrapPlain turns plain text into a single escaped paragraph.
func WrapPlain(text string) string {
	return "<p>" + html.EscapeString(strings.TrimSpace(text)) + "</p>"
}

// UnwrapBody returns the inner markup of <body>, serialized child by child,
// when content is a full document. Fragments are returned unchanged.
func UnwrapBody(content string) (string, error) {
	if !hasBodyTag(content) {
		return content, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	inner, err := doc.Find("body").First().Html()
	if err != nil {
		return "", fmt.Errorf("serializing body: %w", err)
	}
	return inner, nil
}

// hasBodyTag reports whether the markup contains an explicit <body> start
// tag. A full parse cannot answer this because the parser always
// synthesizes a body element.
func hasBodyTag(content string) bool {
	if !strings.Contains(strings.ToLower(content), "<body") {
		return false
	}
	z := xhtml.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return false
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Body {
				return true
			}
		}
	}
}
