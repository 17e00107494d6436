package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/encoding"
)

// DefaultDebounce is how long a file must stay quiet before it is
// re-indexed by Watch.
const DefaultDebounce = 500 * time.Millisecond

// Watch keeps the index for req.Root current until ctx is done. Files that
// match the masks are re-indexed once they have been quiet for debounce;
// new subdirectories are picked up as they appear. Removed files are left
// in the index and their lines drop out of exact results when re-read.
func (ix *Indexer) Watch(ctx context.Context, req Request, debounce time.Duration) error {
	root, masks, enc, err := prepare(req)
	if err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	pending := make(map[string]time.Time)
	queue := func(path string) {
		if matchAny(masks, filepath.Base(path)) {
			pending[path] = time.Now()
		}
	}
	addTree(w, root, nil)
	log.Info("watching for changes", "root", root, "debounce", debounce)

	ticker := time.NewTicker(max(debounce/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					addTree(w, ev.Name, queue)
					continue
				}
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				queue(ev.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "root", root, "err", err)

		case now := <-ticker.C:
			var ready []string
			for path, at := range pending {
				if now.Sub(at) >= debounce {
					ready = append(ready, path)
					delete(pending, path)
				}
			}
			if len(ready) > 0 {
				slices.Sort(ready)
				ix.reindex(ctx, root, ready, enc)
			}
		}
	}
}

// reindex runs a batch of changed files through the pipeline and reports
// it to the observer like a small scan.
func (ix *Indexer) reindex(ctx context.Context, root string, paths []string, enc encoding.Encoding) {
	start := time.Now()
	sum := Summary{Root: root, Matched: len(paths)}
	ix.opts.Observer.ScanStarted(len(paths))
	for i, path := range paths {
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			sum.Skipped++
			ix.opts.Observer.Progress(i+1, len(paths))
			continue
		}
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
	log.Info("re-indexed changed files", "root", root, "files", len(paths), "indexed", sum.Indexed)
	ix.opts.Observer.ScanFinished(sum)
}

// addTree watches dir and its subdirectories. When found is set, it is
// called for every file already present, so files created together with a
// new directory are not missed.
func addTree(w *fsnotify.Watcher, dir string, found func(path string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if found != nil {
				found(path)
			}
			return nil
		}
		if err := w.Add(path); err != nil {
			log.Debug("cannot watch directory", "path", path, "err", err)
		}
		return nil
	})
}
