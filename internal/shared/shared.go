// Package shared holds the text-file helpers used by both the indexer and
// the query engine.
package shared

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when no encoding name is given.
const DefaultEncoding = "UTF-8"

var ErrUnknownEncoding = errors.New("unknown text encoding")

// LookupEncoding resolves an IANA or WHATWG encoding name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// LineReader yields the lines of a text stream numbered from 1. Line
// terminators ("\n" or "\r\n") are stripped and a final unterminated line
// still counts.
type LineReader struct {
	r    *bufio.Reader
	text string
	n    int
	err  error
	done bool
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// Next advances to the next line.
func (lr *LineReader) Next() bool {
	if lr.done {
		return false
	}
	line, err := lr.r.ReadString('\n')
	if err != nil {
		lr.done = true
		if !errors.Is(err, io.EOF) {
			lr.err = err
			return false
		}
		if line == "" {
			return false
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if lr.n == 0 {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	lr.n++
	lr.text = line
	return true
}

// Text returns the current line.
func (lr *LineReader) Text() string { return lr.text }

// Number returns the 1-based number of the current line, which after the
// last call to Next is the total line count.
func (lr *LineReader) Number() int { return lr.n }

func (lr *LineReader) Err() error { return lr.err }

// TextFile is an open file decoded with a text encoding.
type TextFile struct {
	*LineReader
	f *os.File
}

// OpenText opens path for line reading under enc. A nil enc means UTF-8.
func OpenText(path string, enc encoding.Encoding) (*TextFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = f
	if enc != nil && enc != unicode.UTF8 {
		r = enc.NewDecoder().Reader(f)
	}
	return &TextFile{LineReader: NewLineReader(r), f: f}, nil
}

func (t *TextFile) Stat() (os.FileInfo, error) {
	return t.f.Stat()
}

func (t *TextFile) Close() error {
	return t.f.Close()
}

// ReadLine returns line lineNo (1-based) of path, reading forward from the
// start. ok is false when the file cannot be opened or has fewer lines.
func ReadLine(path string, lineNo int, enc encoding.Encoding) (string, bool) {
	if lineNo < 1 {
		return "", false
	}
	tf, err := OpenText(path, enc)
	if err != nil {
		return "", false
	}
	defer tf.Close()
	for tf.Next() {
		if tf.Number() == lineNo {
			return tf.Text(), true
		}
	}
	return "", false
}

// ReadLines returns the text of each wanted line of path in one forward
// pass. Lines past the end of the file are absent from the result; a file
// that cannot be opened yields an empty map.
func ReadLines(path string, wanted []int, enc encoding.Encoding) map[int]string {
	out := make(map[int]string, len(wanted))
	last := 0
	need := make(map[int]struct{}, len(wanted))
	for _, n := range wanted {
		need[n] = struct{}{}
		last = max(last, n)
	}
	if last < 1 {
		return out
	}
	tf, err := OpenText(path, enc)
	if err != nil {
		return out
	}
	defer tf.Close()
	for tf.Next() {
		if _, ok := need[tf.Number()]; ok {
			out[tf.Number()] = tf.Text()
		}
		if tf.Number() >= last {
			break
		}
	}
	return out
}

// TruncateText truncates text to maxLen runes.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
