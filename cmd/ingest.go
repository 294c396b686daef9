// Package cmd — ingest command.
// This is the main command; it orchestrates the pipeline for every message:
// parse → date + slug → (skip | extract → summarize → tag → append) → save.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/gaurav-prasanna/letterpipe/core"
	"github.com/gaurav-prasanna/letterpipe/core/dates"
	"github.com/gaurav-prasanna/letterpipe/core/extract"
	"github.com/gaurav-prasanna/letterpipe/core/ingest"
	"github.com/gaurav-prasanna/letterpipe/core/mailparse"
	"github.com/gaurav-prasanna/letterpipe/core/summarize"
	"github.com/gaurav-prasanna/letterpipe/core/tag"
	"github.com/gaurav-prasanna/letterpipe/source"
	"github.com/spf13/cobra"
)

var flagSanitize bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir | file.mbox]",
	Short: "Merge saved newsletter emails into the collection",
	Long: `Ingest reads every .eml file in a directory (the data directory by default),
or every message of an mbox archive, and appends a record for each issue
whose id (<date>-<slug of subject>) is not in the collection yet.

Messages that cannot be parsed are reported and skipped; the rest of the
batch is still processed.

Examples:
  letterpipe ingest
  letterpipe ingest ./inbox --store ./site/data/newsletters.json
  letterpipe ingest archive.mbox --sanitize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&flagSanitize, "sanitize", false, "Strip unsafe markup from extracted HTML")
}

func runIngest(cmd *cobra.Command, args []string) error {
	input := cfg.DataDir
	if len(args) == 1 {
		input = args[0]
	}

	src, err := selectSource(input)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ingester := newIngester(flagSanitize || cfg.Extract.Sanitize)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ingesting %s into %s...\n", input, cfg.Store.Path)

	report, err := ingester.Run(context.Background(), src, st)
	if err != nil {
		return err
	}

	for _, id := range report.Added {
		fmt.Fprintf(out, "  ✓ Added %s\n", id)
	}
	for _, id := range report.Skipped {
		fmt.Fprintf(out, "  - Skipped %s (already exists)\n", id)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: %v\n", f.Name, f.Err)
	}
	fmt.Fprintf(out, "Done! %d added, %d skipped, %d failed.\n",
		len(report.Added), len(report.Skipped), len(report.Failed))
	return nil
}

// selectSource picks the mbox reader for mbox files and the directory
// lister otherwise.
func selectSource(input string) (core.MessageSource, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if info.IsDir() {
		return source.NewDir(input), nil
	}
	if source.IsMboxFile(input) {
		return source.NewMbox(input), nil
	}
	if source.IsMessageFile(input) {
		return source.Static{source.FileMessage(input)}, nil
	}
	return nil, fmt.Errorf("unsupported input %s: expected a directory, .eml or .mbox file", input)
}

// newIngester wires the pipeline stages from the loaded configuration.
func newIngester(sanitize bool) *ingest.Ingester {
	var opts []extract.Option
	if sanitize {
		opts = append(opts, extract.WithSanitizer(extract.NewSanitizer()))
	}

	return ingest.New(
		mailparse.New(),
		dates.New(logger),
		extract.New(opts...),
		summarize.New(),
		tag.New(cfg.Tagging.Rules, cfg.Tagging.Default),
		logger,
	)
}
