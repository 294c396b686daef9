// Package cmd — export command.
// Renders stored records through the export pipeline:
// load → find → normalize → render → write.
//
// It handles flag validation and renderer selection.
package cmd

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/letterpipe/core"
	"github.com/gaurav-prasanna/letterpipe/core/normalize"
	"github.com/gaurav-prasanna/letterpipe/core/output"
	"github.com/gaurav-prasanna/letterpipe/core/render"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagPDF       bool
	flagMarkdown  bool
	flagJSON      bool
	flagExportAll bool
	flagOutputDir string
)

var exportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export stored records as Markdown, JSON or PDF",
	Long: `Export converts the HTML body of stored records to Markdown and renders
it to the selected output format, one file per record named after its id.

Examples:
  letterpipe export 2025-12-02-harvard-released-a-free-book-on-ml-systems-engineering --markdown
  letterpipe export --all --json --output_dir ./out
  letterpipe export 2025-12-02-some-issue --pdf`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Output format flags (mutually exclusive).
	exportCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	exportCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	exportCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")

	exportCmd.Flags().BoolVar(&flagExportAll, "all", false, "Export every record in the collection")
	exportCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: export.output_dir from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := validateFlags(args); err != nil {
		return err
	}

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	dir := flagOutputDir
	if dir == "" {
		dir = cfg.Export.OutputDir
	}
	writer, err := output.New(dir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	coll, err := st.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}

	records, err := selectRecords(coll, args)
	if err != nil {
		return err
	}

	normalizer := normalize.New()
	out := cmd.OutOrStdout()

	var errCount int
	for i, rec := range records {
		if len(records) > 1 {
			fmt.Fprintf(out, "[%d/%d] Exporting %s\n", i+1, len(records), rec.ID)
		}

		data, err := exportRecord(rec, normalizer, renderer)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ Error: %v\n", err)
			errCount++
			continue
		}

		path, err := writer.Write(rec.ID, data, renderer.Extension())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ Write error: %v\n", err)
			errCount++
			continue
		}
		fmt.Fprintf(out, "✓ Written: %s\n", path)
	}

	if errCount > 0 {
		return fmt.Errorf("%d/%d records failed to export", errCount, len(records))
	}
	return nil
}

// selectRecords resolves ids against the collection, or returns every
// record with --all.
func selectRecords(coll *core.Collection, ids []string) ([]core.Record, error) {
	if flagExportAll {
		return coll.Newsletters, nil
	}

	records := make([]core.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok := coll.Find(id)
		if !ok {
			return nil, fmt.Errorf("no record with id %q", id)
		}
		records = append(records, rec)
	}
	return records, nil
}

// exportRecord runs a single record through normalize and render.
func exportRecord(rec core.Record, normalizer core.Normalizer, renderer core.Renderer) ([]byte, error) {
	markdown, err := normalizer.Normalize(rec.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", rec.ID, err)
	}

	data, err := renderer.Render(markdown, rec)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rec.ID, err)
	}
	return data, nil
}

// validateFlags checks that exactly one output format is chosen and that
// records are named either by id or with --all.
func validateFlags(args []string) error {
	if flagExportAll && len(args) > 0 {
		return fmt.Errorf("--all cannot be combined with explicit ids")
	}
	if !flagExportAll && len(args) == 0 {
		return fmt.Errorf("at least one record id (or --all) is required")
	}

	// Count output formats.
	formatCount := 0
	if flagPDF {
		formatCount++
	}
	if flagMarkdown {
		formatCount++
	}
	if flagJSON {
		formatCount++
	}

	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --pdf, --markdown, or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer(), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	case flagPDF:
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
