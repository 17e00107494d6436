package mcp

import (
	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/search"
)

// SearchWordsInput defines the input schema for the search_words tool.
type SearchWordsInput struct {
	Word          string `json:"word" jsonschema:"Whole word to look up in the index"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"Match case exactly"`
	Mask          string `json:"mask,omitempty" jsonschema:"Path wildcard using * and ?, e.g. *.log"`
	From          string `json:"from,omitempty" jsonschema:"Earliest modification date, YYYY-MM-DD"`
	To            string `json:"to,omitempty" jsonschema:"Latest modification date, YYYY-MM-DD"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum number of matches, 0 for the server default"`
}

// SearchPatternInput defines the input schema for the search_pattern tool.
type SearchPatternInput struct {
	Pattern       string `json:"pattern" jsonschema:"RE2 regular expression matched against each line"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"Match case exactly"`
	Mask          string `json:"mask,omitempty" jsonschema:"Path wildcard using * and ?, e.g. *.log"`
	From          string `json:"from,omitempty" jsonschema:"Earliest modification date, YYYY-MM-DD"`
	To            string `json:"to,omitempty" jsonschema:"Latest modification date, YYYY-MM-DD"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum number of matches, 0 for the server default"`
}

// SearchOutput defines the output schema for both search tools.
type SearchOutput struct {
	Matches []search.Match `json:"matches"`
	Total   int            `json:"total"`
}

// IndexStatsInput defines the input schema for the index_stats tool.
type IndexStatsInput struct {
	Top int `json:"top,omitempty" jsonschema:"Number of most frequent words to include"`
}

// IndexStatsOutput defines the output schema for the index_stats tool.
type IndexStatsOutput struct {
	Stats    db.Stats  `json:"stats"`
	TopWords []db.Word `json:"top_words"`
}

// filter is the part of a search input shared by both tools.
type filter struct {
	caseSensitive bool
	mask          string
	from, to      string
	limit         int
}

func (in SearchWordsInput) filter() filter {
	return filter{in.CaseSensitive, in.Mask, in.From, in.To, in.Limit}
}

func (in SearchPatternInput) filter() filter {
	return filter{in.CaseSensitive, in.Mask, in.From, in.To, in.Limit}
}
