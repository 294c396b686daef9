// Package tag implements the Tagger interface.
// Tagging is a fixed keyword lookup: every rule whose keyword appears
// anywhere in the lowercased subject contributes its tag.
package tag

import "strings"

// DefaultTag is used when no rule matches.
const DefaultTag = "AI"

// Rule maps a lowercase keyword to a tag.
type Rule struct {
	Keyword string `mapstructure:"keyword" json:"keyword"`
	Tag     string `mapstructure:"tag" json:"tag"`
}

// DefaultRules is the built-in keyword table, checked in order.
var DefaultRules = []Rule{
	{"agent", "Agents"},
	{"context", "Context Engineering"},
	{"ocr", "OCR"},
	{"deepseek", "DeepSeek"},
	{"gemini", "Gemini"},
	{"google", "Google"},
	{"llm", "LLM"},
	{"diffusion", "Diffusion Models"},
	{"sql", "SQL"},
	{"memory", "Memory"},
	{"harvard", "Harvard"},
	{"book", "Education"},
	{"systems", "Systems"},
	{"open source", "Open Source"},
	{"fine-tune", "Fine-tuning"},
	{"training", "Training"},
}

// KeywordTagger matches subjects against an ordered rule list.
type KeywordTagger struct {
	rules      []Rule
	defaultTag string
}

// New creates a KeywordTagger. Nil rules select DefaultRules and an empty
// defaultTag selects DefaultTag.
func New(rules []Rule, defaultTag string) *KeywordTagger {
	if rules == nil {
		rules = DefaultRules
	}
	if defaultTag == "" {
		defaultTag = DefaultTag
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(r.Keyword)
		if kw == "" || r.Tag == "" {
			continue
		}
		normalized = append(normalized, Rule{Keyword: kw, Tag: r.Tag})
	}
	return &KeywordTagger{rules: normalized, defaultTag: defaultTag}
}

// Tags returns the distinct tags whose keyword is a substring of the
// lowercased subject, in rule order. Plain substring matching is intended:
// "sql" also matches inside "nosql".
func (t *KeywordTagger) Tags(subject string) []string {
	lower := strings.ToLower(subject)
	seen := make(map[string]bool)
	var tags []string
	for _, r := range t.rules {
		if !strings.Contains(lower, r.Keyword) || seen[r.Tag] {
			continue
		}
		seen[r.Tag] = true
		tags = append(tags, r.Tag)
	}
	if len(tags) == 0 {
		return []string{t.defaultTag}
	}
	return tags
}
