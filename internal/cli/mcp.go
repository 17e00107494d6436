package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/mcp"
	"github.com/stormlightlabs/linedex/internal/search"
)

func newMCPCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "mcp", Short: "Model Context Protocol server"}
	cmd.AddCommand(newMCPServeCommand())
	return cmd
}

func newMCPServeCommand() *cobra.Command {
	var stdio bool
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Expose the index to MCP clients through the search_words,
search_pattern and index_stats tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stdio && httpAddr == "" {
				stdio = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			engine, err := search.NewEngine(store, search.Options{Encoding: cfg.Index.Encoding})
			if err != nil {
				return err
			}

			handlers := mcp.NewHandlers(engine, store, cfg.Search.DefaultLimit)
			server := mcp.NewServer(handlers, Version)

			if httpAddr != "" {
				fmt.Fprintf(os.Stderr, "Starting MCP server on HTTP %s\n", httpAddr)
				return mcp.RunHTTP(ctx, server, httpAddr)
			}
			return mcp.RunStdio(ctx, server)
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false, "Use stdio transport (default)")
	cmd.Flags().StringVar(&httpAddr, "http", "", "Use HTTP transport on the specified address (e.g., :8080)")
	return cmd
}
