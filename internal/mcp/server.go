// Package mcp exposes the index to Model Context Protocol clients.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates a new MCP server for linedex.
func NewServer(handlers *Handlers, version string) *mcp.Server {
	logger := slog.New(slog.NewJSONHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: slog.LevelInfo},
	))

	server := mcp.NewServer(
		&mcp.Implementation{Name: "linedex", Version: version},
		&mcp.ServerOptions{Logger: logger},
	)

	mcp.AddTool(server, newTool("search_words", "Find lines containing a whole word using the index"),
		func(ctx context.Context, req *mcp.CallToolRequest, input SearchWordsInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: search_words", "word", input.Word, "mask", input.Mask)
			return handlers.SearchWordsHandler(ctx, req, input)
		})

	mcp.AddTool(server, newTool("search_pattern", "Find lines matching a regular expression in indexed files"),
		func(ctx context.Context, req *mcp.CallToolRequest, input SearchPatternInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: search_pattern", "pattern", input.Pattern, "mask", input.Mask)
			return handlers.SearchPatternHandler(ctx, req, input)
		})

	mcp.AddTool(server, newTool("index_stats", "Report index size and the most frequent words"),
		func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatsInput) (*mcp.CallToolResult, any, error) {
			logger.Info("Tool call: index_stats", "top", input.Top)
			return handlers.IndexStatsHandler(ctx, req, input)
		})

	return server
}

// RunStdio runs the server using the stdio transport.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP runs the server using the streamable HTTP transport.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	f := func(r *http.Request) *mcp.Server { return server }
	handler := mcp.NewStreamableHTTPHandler(f, nil)

	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newTool(n, d string) *mcp.Tool {
	return &mcp.Tool{Name: n, Description: d}
}
