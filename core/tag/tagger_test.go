package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags(t *testing.T) {
	tagger := New(nil, "")

	tests := []struct {
		subject string
		want    []string
	}{
		{"Harvard released a free book on ML systems engineering", []string{"Harvard", "Education", "Systems"}},
		{"Building AGENTS with long-term Memory", []string{"Agents", "Memory"}},
		{"Context engineering for LLMs", []string{"Context Engineering", "LLM"}},
		{"How to fine-tune Gemini on Google Cloud", []string{"Gemini", "Google", "Fine-tuning"}},
		{"Open Source diffusion training recipes", []string{"Diffusion Models", "Open Source", "Training"}},
		{"Weekly digest", []string{"AI"}},
		{"", []string{"AI"}},
		// Substring matching: "nosql" carries "sql", "Docrocket" carries "ocr".
		{"Why NoSQL lost", []string{"SQL"}},
		{"Docrocket", []string{"OCR"}},
	}
	for _, tc := range tests {
		t.Run(tc.subject, func(t *testing.T) {
			assert.Equal(t, tc.want, tagger.Tags(tc.subject))
		})
	}
}

func TestTagsDeduplicates(t *testing.T) {
	tagger := New([]Rule{
		{Keyword: "gpt", Tag: "OpenAI"},
		{Keyword: "openai", Tag: "OpenAI"},
		{Keyword: "Claude", Tag: "Anthropic"},
	}, "General")

	assert.Equal(t, []string{"OpenAI", "Anthropic"}, tagger.Tags("OpenAI GPT vs claude"))
	assert.Equal(t, []string{"General"}, tagger.Tags("nothing matches"))
}

func TestTagsNeverEmpty(t *testing.T) {
	tagger := New([]Rule{}, "")
	for _, s := range []string{"", "agent", "anything at all"} {
		assert.NotEmpty(t, tagger.Tags(s))
	}
}

func TestNewSkipsIncompleteRules(t *testing.T) {
	tagger := New([]Rule{{Keyword: "", Tag: "Empty"}, {Keyword: "rust", Tag: ""}}, "")
	assert.Equal(t, []string{"AI"}, tagger.Tags("rust everywhere"))
}
