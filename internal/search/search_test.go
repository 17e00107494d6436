package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/indexer"
)

// fixture indexes a single a.txt holding two hello lines.
func fixture(t *testing.T) (*Engine, string) {
	t.Helper()
	return fixtureWith(t, "a.txt", "Hello world\nHELLO again\n")
}

func fixtureWith(t *testing.T, name, content string) (*Engine, string) {
	t.Helper()
	ctx := context.Background()
	store, err := db.OpenPath(ctx, filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	root := t.TempDir()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := indexer.New(store, indexer.Options{}).Scan(ctx, indexer.Request{Root: root}); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	engine, err := NewEngine(store, Options{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine, path
}

func TestSearchWord(t *testing.T) {
	engine, path := fixture(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		word          string
		caseSensitive bool
		wantLines     []int
	}{
		{"lower", "hello", false, []int{1, 2}},
		{"upper insensitive", "HELLO", false, []int{1, 2}},
		{"upper sensitive", "HELLO", true, nil},
		{"lower sensitive", "hello", true, []int{1, 2}},
		{"absent", "missing", false, nil},
		{"empty", "", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.SearchWord(ctx, tt.word, tt.caseSensitive, Filter{})
			if err != nil {
				t.Fatalf("SearchWord: %v", err)
			}
			if len(got) != len(tt.wantLines) {
				t.Fatalf("SearchWord(%q) = %d matches, want %d", tt.word, len(got), len(tt.wantLines))
			}
			for i, m := range got {
				if m.Line != tt.wantLines[i] || m.Path != path {
					t.Errorf("match %d = %+v, want line %d of %s", i, m, tt.wantLines[i], path)
				}
			}
		})
	}
}

func TestSearchWordText(t *testing.T) {
	engine, _ := fixture(t)
	got, err := engine.SearchWord(context.Background(), "hello", false, Filter{})
	if err != nil {
		t.Fatalf("SearchWord: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Text != "Hello world" || got[1].Text != "HELLO again" {
		t.Errorf("texts = %q, %q", got[0].Text, got[1].Text)
	}
	if got[0].Size != int64(len("Hello world\nHELLO again\n")) {
		t.Errorf("size = %d", got[0].Size)
	}
	if got[0].Modified == "" {
		t.Error("modified is empty")
	}
}

func TestSearchPattern(t *testing.T) {
	engine, _ := fixture(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		pattern       string
		caseSensitive bool
		wantLines     []int
	}{
		{"anchored sensitive", "^HELLO", true, []int{2}},
		{"anchored insensitive", "^hello", false, []int{1, 2}},
		{"word boundary", `\bworld\b`, false, []int{1}},
		{"invalid", "([", false, nil},
		{"backreference", `(a)\1`, false, nil},
		{"empty", "", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.SearchPattern(ctx, tt.pattern, tt.caseSensitive, Filter{})
			if err != nil {
				t.Fatalf("SearchPattern: %v", err)
			}
			if len(got) != len(tt.wantLines) {
				t.Fatalf("SearchPattern(%q) = %d matches, want %d", tt.pattern, len(got), len(tt.wantLines))
			}
			for i, m := range got {
				if m.Line != tt.wantLines[i] {
					t.Errorf("match %d line = %d, want %d", i, m.Line, tt.wantLines[i])
				}
			}
		})
	}
}

func TestSearchPatternUnicode(t *testing.T) {
	engine, _ := fixtureWith(t, "ru.txt", "Привет мир\nпривет, друг\n")
	ctx := context.Background()

	tests := []struct {
		name          string
		pattern       string
		caseSensitive bool
		wantLines     []int
	}{
		{"word boundary", `\bпривет\b`, false, []int{1, 2}},
		{"word class", `^\w+ мир`, false, []int{1}},
		{"upper insensitive", "ПРИВЕТ", false, []int{1, 2}},
		{"upper sensitive", "ПРИВЕТ", true, nil},
		{"lower sensitive", `^привет\b`, true, []int{2}},
		{"partial word", `\bприв\b`, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.SearchPattern(ctx, tt.pattern, tt.caseSensitive, Filter{})
			if err != nil {
				t.Fatalf("SearchPattern: %v", err)
			}
			if len(got) != len(tt.wantLines) {
				t.Fatalf("SearchPattern(%q) = %d matches, want %d", tt.pattern, len(got), len(tt.wantLines))
			}
			for i, m := range got {
				if m.Line != tt.wantLines[i] {
					t.Errorf("match %d line = %d, want %d", i, m.Line, tt.wantLines[i])
				}
			}
		})
	}
}

func TestCompileTimeout(t *testing.T) {
	re, err := Compile(`(a+)+$`, true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if re.MatchTimeout != MatchTimeout {
		t.Errorf("MatchTimeout = %v, want %v", re.MatchTimeout, MatchTimeout)
	}
	if _, err := Compile("([", false); err == nil {
		t.Error("Compile of an unbalanced group should fail")
	}
}

func TestSearchFilter(t *testing.T) {
	engine, _ := fixture(t)
	ctx := context.Background()
	today := time.Now()

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"mask hit", Filter{Mask: "*.txt"}, 2},
		{"mask miss", Filter{Mask: "*.log"}, 0},
		{"mask single char", Filter{Mask: "*a.tx?"}, 2},
		{"today", Filter{From: today, To: today}, 2},
		{"future", Filter{From: today.AddDate(0, 0, 1)}, 0},
		{"past", Filter{To: today.AddDate(0, 0, -1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []Mode{ModeExact, ModePattern} {
				q := Query{Mode: mode, Text: "hello", Filter: tt.filter}
				got, err := engine.Search(ctx, q)
				if err != nil {
					t.Fatalf("Search(%s): %v", mode, err)
				}
				if len(got) != tt.want {
					t.Errorf("Search(%s) = %d matches, want %d", mode, len(got), tt.want)
				}
			}
		})
	}
}

func TestSearchLimit(t *testing.T) {
	engine, _ := fixture(t)
	for _, mode := range []Mode{ModeExact, ModePattern} {
		got, err := engine.Search(context.Background(), Query{Mode: mode, Text: "hello", Limit: 1})
		if err != nil {
			t.Fatalf("Search(%s): %v", mode, err)
		}
		if len(got) != 1 || got[0].Line != 1 {
			t.Errorf("Search(%s) with limit = %+v", mode, got)
		}
	}
}

func TestSearchDropsVanishedLines(t *testing.T) {
	engine, path := fixture(t)
	if err := os.WriteFile(path, []byte("Hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := engine.SearchWord(context.Background(), "hello", false, Filter{})
	if err != nil {
		t.Fatalf("SearchWord: %v", err)
	}
	if len(got) != 1 || got[0].Line != 1 {
		t.Errorf("got %+v, want only line 1", got)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	got, err = engine.SearchWord(context.Background(), "hello", false, Filter{})
	if err != nil || len(got) != 0 {
		t.Errorf("after removal got %v, %v", got, err)
	}
}

type recorder struct {
	mode    string
	results int
	calls   int
}

func (r *recorder) ObserveSearch(mode string, results int, _ time.Duration, _ error) {
	r.mode, r.results = mode, results
	r.calls++
}

func TestSearchRecorder(t *testing.T) {
	engine, _ := fixture(t)
	rec := &recorder{}
	engine.recorder = rec
	if _, err := engine.SearchPattern(context.Background(), "again", false, Filter{}); err != nil {
		t.Fatal(err)
	}
	if rec.calls != 1 || rec.mode != "pattern" || rec.results != 1 {
		t.Errorf("recorder = %+v", rec)
	}
}

func TestSearchUnknownMode(t *testing.T) {
	engine, _ := fixture(t)
	if _, err := engine.Search(context.Background(), Query{Mode: Mode(9), Text: "x"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewEngineEncoding(t *testing.T) {
	if _, err := NewEngine(nil, Options{Encoding: "no-such-charset"}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeExact, false},
		{"exact", ModeExact, false},
		{"Word", ModeExact, false},
		{"regex", ModePattern, false},
		{"pattern", ModePattern, false},
		{"fuzzy", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestListFiles(t *testing.T) {
	engine, path := fixture(t)
	ctx := context.Background()

	files, err := ListFiles(ctx, engine.source, Filter{Mask: "*.txt"})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Path != path || files[0].LineCount != 2 {
		t.Errorf("ListFiles = %+v", files)
	}

	files, err = ListFiles(ctx, engine.source, Filter{Mask: "*.csv"})
	if err != nil || len(files) != 0 {
		t.Errorf("ListFiles(*.csv) = %v, %v", files, err)
	}
}
