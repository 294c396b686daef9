// Package summarize implements the Summarizer interface.
// It flattens an HTML fragment to its visible text and cuts it down to a
// short preview for listings.
package summarize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// DefaultMaxChars is the number of characters kept before truncation.
	DefaultMaxChars = 200
	ellipsis        = "..."
)

// skipped elements hold no readable text.
var skipped = map[string]bool{
	"script": true,
	"style":  true,
}

// TextSummarizer builds plain-text previews.
type TextSummarizer struct {
	MaxChars int
}

// New creates a TextSummarizer with the default length.
func New() *TextSummarizer {
	return &TextSummarizer{MaxChars: DefaultMaxChars}
}

// Summarize returns the fragment's text nodes, each trimmed and joined by a
// single space. Text longer than MaxChars characters is cut to exactly
// MaxChars and suffixed with "...".
func (s *TextSummarizer) Summarize(fragment string) string {
	text := Text(fragment)

	limit := s.MaxChars
	if limit <= 0 {
		limit = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + ellipsis
}

// Text extracts the readable text of an HTML fragment.
func Text(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		// The HTML5 parser only fails on reader errors; fall back to the raw input.
		return strings.TrimSpace(fragment)
	}

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.ElementNode:
		if skipped[n.Data] {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
