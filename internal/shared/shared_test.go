package shared

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func collect(t *testing.T, input string) []string {
	t.Helper()
	lr := NewLineReader(strings.NewReader(input))
	var lines []string
	for lr.Next() {
		lines = append(lines, lr.Text())
	}
	if err := lr.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	return lines
}

func TestLineReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"lf", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"unterminated", "a\nb", []string{"a", "b"}},
		{"empty", "", nil},
		{"blank lines", "\n\nx", []string{"", "", "x"}},
		{"bom", "\uFEFFhello\nworld", []string{"hello", "world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collect(t, tt.input); !slices.Equal(got, tt.expected) {
				t.Errorf("lines = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLineReaderNumber(t *testing.T) {
	lr := NewLineReader(strings.NewReader("one\ntwo\nthree"))
	for lr.Next() {
	}
	if lr.Number() != 3 {
		t.Errorf("Number() = %d, want 3", lr.Number())
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8", "windows-1251", "ISO-8859-1", "latin1"} {
		if _, err := LookupEncoding(name); err != nil {
			t.Errorf("LookupEncoding(%q): %v", name, err)
		}
	}
	if _, err := LookupEncoding("klingon-7"); !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("LookupEncoding(klingon-7) err = %v, want ErrUnknownEncoding", err)
	}
}

func TestOpenTextDecodes(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("Привет мир\nвторая")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cp1251.txt")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatal(err)
	}

	enc, _ := LookupEncoding("windows-1251")
	line, ok := ReadLine(path, 2, enc)
	if !ok || line != "вторая" {
		t.Errorf("ReadLine = %q, %v; want вторая", line, ok)
	}
}

func TestReadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		line int
		text string
		ok   bool
	}{
		{1, "first", true},
		{3, "third", true},
		{4, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		text, ok := ReadLine(path, tt.line, nil)
		if text != tt.text || ok != tt.ok {
			t.Errorf("ReadLine(%d) = %q,%v want %q,%v", tt.line, text, ok, tt.text, tt.ok)
		}
	}

	if _, ok := ReadLine(filepath.Join(t.TempDir(), "missing.txt"), 1, nil); ok {
		t.Error("expected miss for missing file")
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := ReadLines(path, []int{4, 2, 9}, nil)
	if len(got) != 2 || got[2] != "two" || got[4] != "four" {
		t.Errorf("ReadLines = %v", got)
	}
	if got := ReadLines(filepath.Join(t.TempDir(), "missing"), []int{1}, nil); len(got) != 0 {
		t.Errorf("ReadLines(missing) = %v", got)
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is long", 4, "this..."},
		{"привет", 3, "при..."},
	}
	for _, tt := range tests {
		if got := TruncateText(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}
