// Package search answers exact-word queries through the index and regular
// expression queries by scanning the indexed files.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dlclark/regexp2"
	"golang.org/x/text/encoding"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/shared"
	"github.com/stormlightlabs/linedex/internal/tokenize"
)

// Mode selects how a query is evaluated.
type Mode int

const (
	ModeExact Mode = iota
	ModePattern
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModePattern:
		return "pattern"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "exact"/"word" and "pattern"/"regex".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact", "word":
		return ModeExact, nil
	case "pattern", "regex", "regexp":
		return ModePattern, nil
	default:
		return 0, fmt.Errorf("unknown search mode %q", s)
	}
}

type Query struct {
	Mode          Mode
	Text          string
	CaseSensitive bool
	Filter        Filter
	// Limit caps the number of matches; zero means unlimited.
	Limit int
}

// Match is one matching line.
type Match struct {
	Path     string `json:"path" yaml:"path"`
	Line     int    `json:"line" yaml:"line"`
	Text     string `json:"text" yaml:"text"`
	Modified string `json:"modified" yaml:"modified"`
	Size     int64  `json:"size" yaml:"size"`
}

// Source is the read side of the index store.
type Source interface {
	FilePostings(ctx context.Context, word string, filter db.FileFilter) ([]db.FilePosting, error)
	ListFiles(ctx context.Context, filter db.FileFilter) ([]db.File, error)
}

// Evaluator runs one kind of query against a source.
type Evaluator interface {
	Evaluate(ctx context.Context, src Source, q Query) ([]Match, error)
}

// Recorder is told about every completed search.
type Recorder interface {
	ObserveSearch(mode string, results int, elapsed time.Duration, err error)
}

type Options struct {
	// Encoding names the text encoding files are read with; empty is UTF-8.
	Encoding string
	Recorder Recorder
}

type Engine struct {
	source     Source
	evaluators map[Mode]Evaluator
	recorder   Recorder
}

func NewEngine(source Source, opts Options) (*Engine, error) {
	enc, err := shared.LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Engine{
		source: source,
		evaluators: map[Mode]Evaluator{
			ModeExact:   Exact{Encoding: enc},
			ModePattern: Pattern{Encoding: enc},
		},
		recorder: opts.Recorder,
	}, nil
}

// Search evaluates q with the evaluator for its mode.
func (e *Engine) Search(ctx context.Context, q Query) ([]Match, error) {
	ev, ok := e.evaluators[q.Mode]
	if !ok {
		return nil, fmt.Errorf("unsupported search mode %s", q.Mode)
	}
	start := time.Now()
	matches, err := ev.Evaluate(ctx, e.source, q)
	if e.recorder != nil {
		e.recorder.ObserveSearch(q.Mode.String(), len(matches), time.Since(start), err)
	}
	return matches, err
}

// SearchWord runs an exact-word query.
func (e *Engine) SearchWord(ctx context.Context, word string, caseSensitive bool, filter Filter) ([]Match, error) {
	return e.Search(ctx, Query{Mode: ModeExact, Text: word, CaseSensitive: caseSensitive, Filter: filter})
}

// SearchPattern runs a regular-expression query.
func (e *Engine) SearchPattern(ctx context.Context, pattern string, caseSensitive bool, filter Filter) ([]Match, error) {
	return e.Search(ctx, Query{Mode: ModePattern, Text: pattern, CaseSensitive: caseSensitive, Filter: filter})
}

// Exact resolves a word through the index and re-reads the matching lines
// from disk. Stored words are lower-case, so a case-sensitive query only
// matches when it is written in lower case.
type Exact struct {
	Encoding encoding.Encoding
}

func (x Exact) Evaluate(ctx context.Context, src Source, q Query) ([]Match, error) {
	if q.Text == "" {
		return nil, nil
	}
	word := q.Text
	if !q.CaseSensitive {
		word = tokenize.Normalize(word)
	}

	rows, err := src.FilePostings(ctx, word, q.Filter.store())
	if err != nil {
		return nil, fmt.Errorf("exact search %q: %w", word, err)
	}

	var out []Match
	for _, row := range rows {
		// One forward pass per file; lines that vanished since the scan are dropped.
		texts := shared.ReadLines(row.File.Path, row.Lines, x.Encoding)
		for _, n := range row.Lines {
			text, ok := texts[n]
			if !ok || text == "" {
				continue
			}
			out = append(out, newMatch(row.File, n, text))
			if q.Limit > 0 && len(out) >= q.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// Pattern scans every file passing the filter and matches the raw text of
// each line. An invalid expression matches nothing.
type Pattern struct {
	Encoding encoding.Encoding
}

func (p Pattern) Evaluate(ctx context.Context, src Source, q Query) ([]Match, error) {
	if q.Text == "" {
		return nil, nil
	}
	re, err := Compile(q.Text, q.CaseSensitive)
	if err != nil {
		log.Debug("invalid pattern matches nothing", "pattern", q.Text, "err", err)
		return nil, nil
	}

	files, err := src.ListFiles(ctx, q.Filter.store())
	if err != nil {
		return nil, fmt.Errorf("pattern search: %w", err)
	}

	var out []Match
	for _, f := range files {
		tf, err := shared.OpenText(f.Path, p.Encoding)
		if err != nil {
			continue
		}
		for tf.Next() {
			ok, err := re.MatchString(tf.Text())
			if err != nil {
				log.Debug("pattern match abandoned", "path", f.Path, "line", tf.Number(), "err", err)
				continue
			}
			if !ok {
				continue
			}
			out = append(out, newMatch(f, tf.Number(), tf.Text()))
			if q.Limit > 0 && len(out) >= q.Limit {
				_ = tf.Close()
				return out, nil
			}
		}
		_ = tf.Close()
	}
	return out, nil
}

// MatchTimeout bounds the time spent matching a single line.
const MatchTimeout = time.Second

// Compile builds the expression used by pattern mode. Word classes and
// boundaries follow Unicode, so \w and \b work on non-Latin text.
func Compile(pattern string, caseSensitive bool) (*regexp2.Regexp, error) {
	opts := regexp2.None
	if !caseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

func newMatch(f db.File, line int, text string) Match {
	return Match{Path: f.Path, Line: line, Text: text, Modified: f.Modified, Size: f.Size}
}
