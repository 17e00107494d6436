package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/search"
)

var (
	filesMask  string
	filesFrom  string
	filesTo    string
	filesCount bool
	filesPaths bool
)

func newFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List indexed files",
		Long: `List the files recorded in the index, in the order they were first
indexed. The same mask and date filters as search apply.`,
		Example: `  linedex files
  linedex files --mask '*.log' --from 2024-01-01
  linedex files --count`,
		Args: cobra.NoArgs,
		RunE: runFiles,
	}

	cmd.Flags().StringVar(&filesMask, "mask", "", "Path wildcard using * and ?")
	cmd.Flags().StringVar(&filesFrom, "from", "", "Modified on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filesTo, "to", "", "Modified on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&filesCount, "count", false, "Show only the number of files")
	cmd.Flags().BoolVar(&filesPaths, "paths", false, "Print bare paths, one per line")
	return cmd
}

func runFiles(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter(filesMask, filesFrom, filesTo)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	files, err := search.ListFiles(ctx, store, filter)
	if err != nil {
		return err
	}

	if filesCount {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", len(files))
		return nil
	}
	if filesPaths {
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f.Path)
		}
		return nil
	}
	return printFiles(cmd, files)
}

func printFiles(cmd *cobra.Command, files []db.File) error {
	if len(files) == 0 {
		if !quiet {
			p.PrintInfo("No files indexed")
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Path", "Lines", "Size", "Modified"})
	for _, f := range files {
		t.AppendRow(table.Row{f.Path, f.LineCount, formatBytes(f.Size), f.Modified})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// buildFilter parses the shared --mask/--from/--to flags.
func buildFilter(mask, from, to string) (search.Filter, error) {
	f := search.Filter{Mask: mask}
	var err error
	if f.From, err = search.ParseDate(from); err != nil {
		return f, fmt.Errorf("invalid --from date %q (want YYYY-MM-DD)", from)
	}
	if f.To, err = search.ParseDate(to); err != nil {
		return f, fmt.Errorf("invalid --to date %q (want YYYY-MM-DD)", to)
	}
	return f, nil
}
