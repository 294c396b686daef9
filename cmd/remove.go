// Package cmd — remove command.
// Maintenance path: deletes records by exact id and rewrites the collection.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>...",
	Short: "Remove records from the collection by id",
	Long: `Remove deletes every record whose id exactly matches one of the given ids
and writes the collection back.

Example:
  letterpipe remove 2025-12-02-harvard-released-a-free-book-on-ml-systems-engineering`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	coll, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}

	removed := 0
	for _, id := range args {
		n := coll.Remove(id)
		if n == 0 {
			logger.Warn("no record with id", "id", id)
		}
		removed += n
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Removed %d entries.\n", removed)

	if err := st.Save(ctx, coll); err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}
	fmt.Fprintln(out, "Cleanup complete.")
	return nil
}
