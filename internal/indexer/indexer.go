// Package indexer walks a directory tree and records, for every matching
// text file, which lines each word occurs on.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding"

	"github.com/stormlightlabs/linedex/internal/db"
	"github.com/stormlightlabs/linedex/internal/posting"
	"github.com/stormlightlabs/linedex/internal/shared"
	"github.com/stormlightlabs/linedex/internal/tokenize"
)

// DefaultMasks selects the files scanned when a request names none.
var DefaultMasks = []string{"*.txt", "*.log", "*.csv"}

var ErrNotDirectory = errors.New("scan root is not a directory")

// Store is the subset of the index store the pipeline writes through.
type Store interface {
	LookupID(ctx context.Context, kind db.Entity, key string) (int64, bool, error)
	UpsertFile(ctx context.Context, path string, size int64, modified time.Time, lineCount int) (int64, error)
	UpsertWord(ctx context.Context, word string, delta int) (int64, error)
	UpsertPosting(ctx context.Context, wordID, fileID int64, lines []int) error
	PostingLines(ctx context.Context, wordID, fileID int64) ([]int, bool, error)
}

// Request describes one directory scan.
type Request struct {
	Root     string   `json:"root"`
	Masks    []string `json:"masks,omitempty"`
	Encoding string   `json:"encoding,omitempty"`
}

// Summary reports what a scan did.
type Summary struct {
	Root     string        `json:"root"`
	Matched  int           `json:"matched"`
	Indexed  int           `json:"indexed"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Postings int           `json:"postings"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

type Options struct {
	// CorrectDrift subtracts the previous posting's line count from a word's
	// occurrence counter when a file is re-scanned. Off by default, so
	// counters only ever grow.
	CorrectDrift bool
	Observer     Observer
}

type Indexer struct {
	store Store
	opts  Options
}

func New(store Store, opts Options) *Indexer {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Indexer{store: store, opts: opts}
}

// Scan indexes every regular file under req.Root whose name matches one of
// the masks. Files that cannot be read are skipped and per-file storage
// failures do not stop the scan; the returned error is reserved for an
// unusable root, mask or encoding.
func (ix *Indexer) Scan(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	root, masks, enc, err := prepare(req)
	if err != nil {
		return Summary{}, err
	}

	paths, err := collect(root, masks)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Root: root, Matched: len(paths)}
	log.Info("scan starting", "root", root, "files", len(paths), "masks", strings.Join(masks, ","))
	ix.opts.Observer.ScanStarted(len(paths))

	for i, path := range paths {
		res := ix.indexFile(ctx, path, enc)
		switch res.status {
		case statusIndexed:
			sum.Indexed++
		case statusSkipped:
			sum.Skipped++
		case statusFailed:
			sum.Failed++
		}
		sum.Postings += res.postings
		sum.Errors += res.errors
		ix.opts.Observer.Progress(i+1, len(paths))
	}

	sum.Duration = time.Since(start)
	log.Info("scan complete", "root", root, "indexed", sum.Indexed, "skipped", sum.Skipped, "failed", sum.Failed, "duration", sum.Duration)
	ix.opts.Observer.ScanFinished(sum)
	return sum, nil
}

// prepare validates a request and resolves its defaults.
func prepare(req Request) (string, []string, encoding.Encoding, error) {
	masks := req.Masks
	if len(masks) == 0 {
		masks = DefaultMasks
	}
	for _, m := range masks {
		if _, err := filepath.Match(m, ""); err != nil {
			return "", nil, nil, fmt.Errorf("mask %q: %w", m, err)
		}
	}
	enc, err := shared.LookupEncoding(req.Encoding)
	if err != nil {
		return "", nil, nil, err
	}

	root, err := filepath.Abs(req.Root)
	if err != nil {
		return "", nil, nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", nil, nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", nil, nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return root, masks, enc, nil
}

// collect lists matching regular files in walk order. Unreadable
// subdirectories are passed over.
func collect(root string, masks []string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Debug("skipping unreadable entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchAny(masks, d.Name()) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// matchAny matches name against the masks case-insensitively.
func matchAny(masks []string, name string) bool {
	name = strings.ToLower(name)
	for _, m := range masks {
		if ok, _ := filepath.Match(strings.ToLower(m), name); ok {
			return true
		}
	}
	return false
}

type fileStatus int

const (
	statusIndexed fileStatus = iota
	statusSkipped
	statusFailed
)

type fileResult struct {
	status   fileStatus
	postings int
	errors   int
}

func (ix *Indexer) indexFile(ctx context.Context, path string, enc encoding.Encoding) fileResult {
	tf, err := shared.OpenText(path, enc)
	if err != nil {
		log.Debug("skipping unreadable file", "path", path, "err", err)
		return fileResult{status: statusSkipped}
	}
	defer tf.Close()

	var agg posting.Aggregator
	for tf.Next() {
		agg.Add(tf.Number(), tokenize.Tokenize(tf.Text()))
	}
	if err := tf.Err(); err != nil {
		log.Debug("skipping file after read error", "path", path, "err", err)
		return fileResult{status: statusSkipped}
	}
	info, err := tf.Stat()
	if err != nil {
		log.Debug("skipping file without stat", "path", path, "err", err)
		return fileResult{status: statusSkipped}
	}

	fileID, err := ix.store.UpsertFile(ctx, path, info.Size(), info.ModTime(), tf.Number())
	if err != nil {
		log.Warn("failed to record file", "path", path, "err", err)
		return fileResult{status: statusFailed}
	}

	res := fileResult{status: statusIndexed}
	postings := agg.Postings()
	for _, word := range agg.Words() {
		lines := postings[word]
		delta, err := ix.occurrenceDelta(ctx, word, fileID, len(lines))
		if err != nil {
			log.Warn("failed to read previous posting", "path", path, "word", word, "err", err)
			res.errors++
			continue
		}
		wordID, err := ix.store.UpsertWord(ctx, word, delta)
		if err != nil {
			log.Warn("failed to record word", "path", path, "word", word, "err", err)
			res.errors++
			continue
		}
		if err := ix.store.UpsertPosting(ctx, wordID, fileID, lines); err != nil {
			log.Warn("failed to record posting", "path", path, "word", word, "err", err)
			res.errors++
			continue
		}
		res.postings++
	}
	log.Debug("indexed file", "path", path, "lines", tf.Number(), "words", agg.Len())
	return res
}

func (ix *Indexer) occurrenceDelta(ctx context.Context, word string, fileID int64, n int) (int, error) {
	if !ix.opts.CorrectDrift {
		return n, nil
	}
	wordID, ok, err := ix.store.LookupID(ctx, db.EntityWord, word)
	if err != nil || !ok {
		return n, err
	}
	prev, ok, err := ix.store.PostingLines(ctx, wordID, fileID)
	if err != nil || !ok {
		return n, err
	}
	return n - len(prev), nil
}
