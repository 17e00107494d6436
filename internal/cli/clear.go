package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every file, word and posting from the index",
		Long: `Delete all indexed data. The database and its tables are kept, so a
new scan can start immediately.`,
		Args: cobra.NoArgs,
		RunE: runClear,
	}
	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	if !quiet {
		p.PrintSuccess("Index cleared")
	}
	return nil
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
