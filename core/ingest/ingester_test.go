package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/letterpipe/core"
	"github.com/gaurav-prasanna/letterpipe/core/dates"
	"github.com/gaurav-prasanna/letterpipe/core/extract"
	"github.com/gaurav-prasanna/letterpipe/core/mailparse"
	"github.com/gaurav-prasanna/letterpipe/core/summarize"
	"github.com/gaurav-prasanna/letterpipe/core/tag"
	"github.com/gaurav-prasanna/letterpipe/source"
	"github.com/gaurav-prasanna/letterpipe/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harvardID = "2025-12-02-harvard-released-a-free-book-on-ml-systems-engineering"

func newTestIngester() *Ingester {
	d := dates.New(nil)
	d.Now = func() time.Time { return time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC) }
	return New(mailparse.New(), d, extract.New(), summarize.New(), tag.New(nil, ""), nil)
}

func eml(subject, date, contentType, body string) []byte {
	var b strings.Builder
	if subject != "" {
		b.WriteString("Subject: " + subject + "\r\n")
	}
	if date != "" {
		b.WriteString("Date: " + date + "\r\n")
	}
	b.WriteString("Content-Type: " + contentType + "; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func harvardMessage() []byte {
	return eml(
		"Harvard released a free book on ML systems engineering",
		"Tue, 02 Dec 2025 13:33:51 +0000 (UTC)",
		"text/html",
		"<html><head><title>x</title></head><body><h2>Free book</h2><p>Read it online.</p></body></html>",
	)
}

func TestRunHarvardScenario(t *testing.T) {
	st := store.NewMemory()
	src := source.Static{source.BytesMessage("harvard.eml", harvardMessage())}

	report, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)
	assert.Equal(t, []string{harvardID}, report.Added)

	records := st.Records()
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, harvardID, r.ID)
	assert.Equal(t, "Harvard released a free book on ML systems engineering", r.Title)
	assert.Equal(t, "2025-12-02", r.Date)
	assert.Subset(t, r.Tags, []string{"Harvard", "Education", "Systems"})
	assert.Equal(t, "<h2>Free book</h2><p>Read it online.</p>", r.ContentHTML)
	assert.Equal(t, "Free book Read it online.", r.Summary)
}

func TestRunPlainTextScenario(t *testing.T) {
	st := store.NewMemory()
	src := source.Static{source.BytesMessage("plain.eml",
		eml("Weekly digest", "Wed, 03 Dec 2025 08:00:00 +0000", "text/plain", "Hello world\r\n"))}

	_, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)

	records := st.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "<p>Hello world</p>", records[0].ContentHTML)
	assert.Equal(t, "Hello world", records[0].Summary)
	assert.Equal(t, []string{"AI"}, records[0].Tags)
}

func TestRunSkipsDuplicateID(t *testing.T) {
	st := store.NewMemory()
	second := eml(
		"Harvard released a free book on ML systems engineering",
		"Tue, 02 Dec 2025 18:00:00 +0000",
		"text/plain",
		"A different body entirely",
	)
	src := source.Static{
		source.BytesMessage("a.eml", harvardMessage()),
		source.BytesMessage("b.eml", second),
	}

	report, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)

	assert.Equal(t, []string{harvardID}, report.Added)
	assert.Equal(t, []string{harvardID}, report.Skipped)
	records := st.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "<h2>Free book</h2><p>Read it online.</p>", records[0].ContentHTML)
}

func TestRunIsIdempotent(t *testing.T) {
	existing := core.Record{
		ID: "2025-11-01-older", Title: "Older", Date: "2025-11-01",
		Summary: "kept", Tags: []string{"AI"}, ContentHTML: "<p>kept</p>",
	}
	st := store.NewMemory(existing)
	src := source.Static{
		source.BytesMessage("harvard.eml", harvardMessage()),
		source.BytesMessage("plain.eml", eml("Agents and memory", "Thu, 04 Dec 2025 10:00:00 +0100", "text/plain", "Body")),
	}
	in := newTestIngester()

	first, err := in.Run(context.Background(), src, st)
	require.NoError(t, err)
	assert.Len(t, first.Added, 2)
	afterFirst := st.Records()

	second, err := in.Run(context.Background(), src, st)
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	assert.Len(t, second.Skipped, 2)
	assert.Equal(t, afterFirst, st.Records())

	seen := map[string]bool{}
	for _, r := range st.Records() {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
	assert.Equal(t, existing, st.Records()[0])
}

func TestRunContinuesPastBadMessages(t *testing.T) {
	st := store.NewMemory()
	src := source.Static{
		source.BytesMessage("broken.eml", []byte("no header terminator and no colon")),
		source.BytesMessage("nosubject.eml", eml("", "Tue, 02 Dec 2025 13:33:51 +0000", "text/plain", "x")),
		{Name: "unreadable.eml", Open: func() (io.ReadCloser, error) { return nil, errors.New("permission denied") }},
		source.BytesMessage("good.eml", harvardMessage()),
	}

	report, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)

	assert.Equal(t, []string{harvardID}, report.Added)
	require.Len(t, report.Failed, 3)
	assert.Equal(t, "broken.eml", report.Failed[0].Name)
	assert.ErrorIs(t, report.Failed[1].Err, ErrMissingSubject)
	assert.Equal(t, "unreadable.eml", report.Failed[2].Name)
	assert.Equal(t, 4, report.Total())
	assert.Len(t, st.Records(), 1)
}

func TestRunMissingDateUsesToday(t *testing.T) {
	st := store.NewMemory()
	src := source.Static{source.BytesMessage("nodate.eml", eml("Gemini news", "", "text/plain", "hi"))}

	report, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-05-gemini-news"}, report.Added)
}

func TestProcessEmptySlug(t *testing.T) {
	coll := core.NewCollection()
	msg := &core.Message{Subject: "!!!", HasSubject: true, Date: "Tue, 02 Dec 2025 13:33:51 +0000"}

	out := newTestIngester().Process(coll, msg)
	assert.Equal(t, Added, out.State)
	assert.Equal(t, "2025-12-02-", out.ID)

	r, ok := coll.Find("2025-12-02-")
	require.True(t, ok)
	assert.Empty(t, r.ContentHTML)
	assert.Empty(t, r.Summary)
	assert.Equal(t, []string{"AI"}, r.Tags)
}

func TestRunForwardedIssue(t *testing.T) {
	raw := strings.ReplaceAll(`Subject: Fwd: Gemini weekly
Date: Wed, 03 Dec 2025 08:00:00 +0000
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: text/plain; charset=utf-8

See below
--outer
Content-Type: message/rfc822

Subject: Gemini weekly
Content-Type: text/html; charset=utf-8

<html><body><h2>Inner issue</h2></body></html>
--outer--
`, "\n", "\r\n")
	st := store.NewMemory()
	src := source.Static{source.BytesMessage("fwd.eml", []byte(raw))}

	report, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-03-fwd-gemini-weekly"}, report.Added)

	records := st.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "<h2>Inner issue</h2>", records[0].ContentHTML)
	assert.Equal(t, "Inner issue", records[0].Summary)
}

func TestRunKeepsDamagedMessages(t *testing.T) {
	truncated := strings.ReplaceAll(`Subject: Cut short
Date: Wed, 03 Dec 2025 08:00:00 +0000
Content-Type: multipart/alternative; boundary="XYZ"

--XYZ
Content-Type: text/html; charset=utf-8

<p>hi</p>
`, "\n", "\r\n")
	badBase64 := strings.ReplaceAll(`Subject: Bad encoding
Date: Wed, 03 Dec 2025 08:00:00 +0000
Content-Type: text/html; charset=utf-8
Content-Transfer-Encoding: base64

!!!! not base64 !!!!
`, "\n", "\r\n")

	st := store.NewMemory()
	src := source.Static{
		source.BytesMessage("trunc.eml", []byte(truncated)),
		source.BytesMessage("b64.eml", []byte(badBase64)),
	}

	report, err := newTestIngester().Run(context.Background(), src, st)
	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"2025-12-03-cut-short", "2025-12-03-bad-encoding"}, report.Added)

	r, ok := core.NewCollection(st.Records()...).Find("2025-12-03-cut-short")
	require.True(t, ok)
	assert.Equal(t, "<p>hi</p>", strings.TrimSpace(r.ContentHTML))
}

type failingStore struct{ *store.Memory }

func (failingStore) Load(context.Context) (*core.Collection, error) {
	return nil, errors.New("corrupt")
}

func TestRunAbortsOnLoadFailure(t *testing.T) {
	_, err := newTestIngester().Run(context.Background(), source.Static{}, failingStore{store.NewMemory()})
	assert.ErrorContains(t, err, "loading collection")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
}
