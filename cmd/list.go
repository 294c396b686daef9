// Package cmd — list command.
// Prints the collection (optionally filtered by a title/summary query) as a table.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/letterpipe/core"
)

var flagQuery string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the records in the collection",
	Long: `List prints date, id, title and tags of every record, in collection order.
With --query only records whose title or summary contains the text
(case-insensitive) are shown.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "Only show records whose title or summary contains this text")
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	coll, err := st.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}

	records := coll.Filter(flagQuery)
	fmt.Fprintln(cmd.OutOrStdout(), renderRecords(records))
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records\n", len(records), coll.Len())
	return nil
}

// renderRecords lays records out as a rounded table.
func renderRecords(records []core.Record) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Date", "ID", "Title", "Tags"})
	for _, r := range records {
		tw.AppendRow(table.Row{r.Date, r.ID, r.Title, strings.Join(r.Tags, ", ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 48},
		{Number: 3, WidthMax: 60, Align: text.AlignLeft},
	})
	return tw.Render()
}
