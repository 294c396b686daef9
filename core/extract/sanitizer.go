package extract

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips scripts, event handlers and other unsafe markup while
// keeping the structural HTML a newsletter needs.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer based on the UGC policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()

	// Newsletter links leave the site.
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{policy: p}
}

// Sanitize returns the cleaned fragment, trimmed.
func (s *Sanitizer) Sanitize(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
