package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harvardID = "2025-12-02-harvard-released-a-free-book-on-ml-systems-engineering"

const harvardEML = "Subject: Harvard released a free book on ML systems engineering\r\n" +
	"Date: Tue, 02 Dec 2025 13:33:51 +0000 (UTC)\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n\r\n" +
	"<html><body><h2>Free book</h2><p>Read it online.</p></body></html>\r\n"

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag of the command tree, persistent ones
// included, back to its default so runs do not leak into each other.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func writeInbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harvard.eml"), []byte(harvardEML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	return dir
}

func readStore(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Newsletters []map[string]any `json:"newsletters"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc.Newsletters
}

func TestIngestListRemove(t *testing.T) {
	dir := writeInbox(t)
	storePath := filepath.Join(dir, "newsletters.json")

	out, err := run(t, "ingest", dir, "--store", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added "+harvardID)
	assert.Contains(t, out, "1 added, 0 skipped, 0 failed")

	records := readStore(t, storePath)
	require.Len(t, records, 1)
	assert.Equal(t, harvardID, records[0]["id"])

	// Second run is a no-op.
	out, err = run(t, "ingest", dir, "--store", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "0 added, 1 skipped, 0 failed")
	assert.Len(t, readStore(t, storePath), 1)

	out, err = run(t, "list", "--store", storePath, "--query", "harvard")
	require.NoError(t, err)
	assert.Contains(t, out, harvardID)
	assert.Contains(t, out, "1 of 1 records")

	out, err = run(t, "remove", harvardID, "--store", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 entries.")
	assert.Contains(t, out, "Cleanup complete.")
	assert.Empty(t, readStore(t, storePath))
}

func TestRemoveMissingID(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "newsletters.json")

	out, err := run(t, "remove", "nope", "--store", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 entries.")
	assert.Empty(t, readStore(t, storePath))
}

func TestExportMarkdown(t *testing.T) {
	dir := writeInbox(t)
	storePath := filepath.Join(dir, "newsletters.json")
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "ingest", dir, "--store", storePath)
	require.NoError(t, err)

	out, err := run(t, "export", harvardID, "--markdown", "--output_dir", outDir, "--store", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Written:")

	data, err := os.ReadFile(filepath.Join(outDir, harvardID+".md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Harvard released a free book on ML systems engineering")
	assert.Contains(t, string(data), "## Free book")
}

func TestExportUnknownID(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "export", "missing", "--json", "--store", filepath.Join(dir, "n.json"), "--output_dir", dir)
	assert.ErrorContains(t, err, `no record with id "missing"`)
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		args    []string
		wantErr string
	}{
		{"no format", func() {}, []string{"x"}, "exactly one output format"},
		{"two formats", func() { flagPDF, flagJSON = true, true }, []string{"x"}, "only one output format"},
		{"no ids", func() { flagMarkdown = true }, nil, "at least one record id"},
		{"all with ids", func() { flagMarkdown, flagExportAll = true, true }, []string{"x"}, "--all cannot be combined"},
		{"ok", func() { flagMarkdown = true }, []string{"x"}, ""},
		{"ok all", func() { flagJSON, flagExportAll = true, true }, nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags()
			tc.setup()
			err := validateFlags(tc.args)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
	resetFlags()
}

func TestSelectSource(t *testing.T) {
	dir := writeInbox(t)

	_, err := selectSource(filepath.Join(dir, "notes.txt"))
	assert.ErrorContains(t, err, "unsupported input")

	_, err = selectSource(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	src, err := selectSource(filepath.Join(dir, "harvard.eml"))
	require.NoError(t, err)
	msgs, err := src.List()
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestStoreFlagDoesNotLeakBetweenRuns(t *testing.T) {
	inbox := writeInbox(t)
	first := filepath.Join(t.TempDir(), "first.json")

	_, err := run(t, "ingest", inbox, "--store", first)
	require.NoError(t, err)
	require.Len(t, readStore(t, first), 1)

	// Without --store the default <data_dir>/newsletters.json is used again.
	work := t.TempDir()
	t.Chdir(work)
	out, err := run(t, "ingest", inbox)
	require.NoError(t, err)
	assert.Contains(t, out, "1 added, 0 skipped, 0 failed")
	assert.Len(t, readStore(t, filepath.Join(work, "newsletters.json")), 1)
	assert.Len(t, readStore(t, first), 1)
}
