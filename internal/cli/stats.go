package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statsTop int

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index counters and the most frequent words",
		Example: `  linedex stats
  linedex stats --top 25`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	cmd.Flags().IntVar(&statsTop, "top", 10, "Number of most frequent words to list (0 to skip)")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	path, _ := resolveDBPath()
	p.PrintHeader(fmt.Sprintf("Index %s", p.FormatPath(path)))
	p.PrintListItem("Files", fmt.Sprintf("%d", st.Files))
	p.PrintListItem("Lines", fmt.Sprintf("%d", st.TotalLines))
	p.PrintListItem("Size", formatBytes(st.TotalBytes))
	p.PrintListItem("Words", fmt.Sprintf("%d", st.Words))
	p.PrintListItem("Postings", fmt.Sprintf("%d", st.Postings))

	if statsTop <= 0 || st.Words == 0 {
		return nil
	}

	words, err := store.TopWords(ctx, statsTop)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Word", "Occurrences"})
	for i, w := range words {
		t.AppendRow(table.Row{i + 1, w.Text, w.Occurrences})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
