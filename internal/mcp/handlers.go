package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/search"
)

// Searcher runs queries; *search.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Match, error)
}

// Index reports counters and frequent words; *db.Store satisfies it.
type Index interface {
	Stats(ctx context.Context) (db.Stats, error)
	TopWords(ctx context.Context, limit int) ([]db.Word, error)
}

type Handlers struct {
	searcher     Searcher
	index        Index
	defaultLimit int
}

func NewHandlers(searcher Searcher, index Index, defaultLimit int) *Handlers {
	return &Handlers{searcher: searcher, index: index, defaultLimit: defaultLimit}
}

func (h *Handlers) SearchWordsHandler(ctx context.Context, req *mcp.CallToolRequest, input SearchWordsInput) (*mcp.CallToolResult, any, error) {
	return h.search(ctx, search.ModeExact, input.Word, input.filter())
}

func (h *Handlers) SearchPatternHandler(ctx context.Context, req *mcp.CallToolRequest, input SearchPatternInput) (*mcp.CallToolResult, any, error) {
	return h.search(ctx, search.ModePattern, input.Pattern, input.filter())
}

func (h *Handlers) search(ctx context.Context, mode search.Mode, text string, in filter) (*mcp.CallToolResult, any, error) {
	from, err := search.ParseDate(in.from)
	if err != nil {
		return nil, nil, fmt.Errorf("from: %w", err)
	}
	to, err := search.ParseDate(in.to)
	if err != nil {
		return nil, nil, fmt.Errorf("to: %w", err)
	}

	limit := in.limit
	if limit <= 0 {
		limit = h.defaultLimit
	}

	matches, err := h.searcher.Search(ctx, search.Query{
		Mode:          mode,
		Text:          text,
		CaseSensitive: in.caseSensitive,
		Filter:        search.Filter{Mask: in.mask, From: from, To: to},
		Limit:         limit,
	})
	if err != nil {
		return nil, nil, err
	}
	if matches == nil {
		matches = []search.Match{}
	}
	return nil, SearchOutput{Matches: matches, Total: len(matches)}, nil
}

func (h *Handlers) IndexStatsHandler(ctx context.Context, req *mcp.CallToolRequest, input IndexStatsInput) (*mcp.CallToolResult, any, error) {
	st, err := h.index.Stats(ctx)
	if err != nil {
		return nil, nil, err
	}
	top := input.Top
	if top <= 0 {
		top = 10
	}
	words, err := h.index.TopWords(ctx, top)
	if err != nil {
		return nil, nil, err
	}
	if words == nil {
		words = []db.Word{}
	}
	return nil, IndexStatsOutput{Stats: st, TopWords: words}, nil
}
