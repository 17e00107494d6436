package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/search"
	"github.com/stormlightlabs/linedex/internal/shared"
)

var (
	searchRegex         bool
	searchCaseSensitive bool
	searchMask          string
	searchFrom          string
	searchTo            string
	searchFormat        string
	searchLimit         int
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed files by word or regular expression",
		Long: `Find the lines of indexed files that contain a word.

By default the query is a single whole word looked up in the index and
matched case-insensitively. With --regex the query is a regular
expression (RE2 syntax) matched against every line of every indexed file
that passes the filters. An invalid expression matches nothing.`,
		Example: `  linedex search hello
  linedex search --regex '^ERROR .*timeout'
  linedex search -c --regex '^HELLO' --mask '*.log' --from 2024-01-01
  linedex search -f json error`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().BoolVarP(&searchRegex, "regex", "r", false, "Treat the query as a regular expression")
	cmd.Flags().BoolVarP(&searchCaseSensitive, "case-sensitive", "c", false, "Match case exactly (default from config)")
	cmd.Flags().StringVar(&searchMask, "mask", "", "Path wildcard using * and ?")
	cmd.Flags().StringVar(&searchFrom, "from", "", "Modified on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&searchTo, "to", "", "Modified on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&searchFormat, "format", "f", "table", "Output format (table, json, yaml, paths)")
	cmd.Flags().IntVarP(&searchLimit, "limit", "l", -1, "Maximum number of matches (default from config, 0 for all)")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter(searchMask, searchFrom, searchTo)
	if err != nil {
		return err
	}

	q := search.Query{
		Mode:          search.ModeExact,
		Text:          strings.Join(args, " "),
		CaseSensitive: searchCaseSensitive || cfg.Search.CaseSensitive,
		Filter:        filter,
		Limit:         cfg.Search.DefaultLimit,
	}
	if searchRegex {
		q.Mode = search.ModePattern
	}
	if searchLimit >= 0 {
		q.Limit = searchLimit
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := search.NewEngine(store, search.Options{Encoding: cfg.Index.Encoding})
	if err != nil {
		return err
	}

	matches, err := engine.Search(ctx, q)
	if err != nil {
		return err
	}

	if len(matches) == 0 && searchFormat == "table" {
		if !quiet {
			p.PrintError(fmt.Sprintf("No results found for %s", p.FormatWord(q.Text)))
		}
		return nil
	}
	return writeMatches(cmd.OutOrStdout(), searchFormat, matches)
}

func writeMatches(w io.Writer, format string, matches []search.Match) error {
	if matches == nil {
		matches = []search.Match{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	case "yaml":
		data, err := yaml.Marshal(matches)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "paths":
		seen := make(map[string]bool)
		for _, m := range matches {
			if !seen[m.Path] {
				seen[m.Path] = true
				fmt.Fprintln(w, m.Path)
			}
		}
		return nil
	case "table", "":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Path", "Line", "Text", "Modified"})
		for _, m := range matches {
			t.AppendRow(table.Row{m.Path, m.Line, shared.TruncateText(m.Text, 80), m.Modified})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use table, json, yaml or paths)", format)
	}
}
