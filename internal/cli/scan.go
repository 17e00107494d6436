package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/indexer"
)

var (
	scanMasks        []string
	scanEncoding     string
	scanCorrectDrift bool
	scanWatch        bool
	scanDebounce     time.Duration
)

func newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Index the text files under a directory",
		Long: `Walk a directory recursively and index every regular file whose name
matches one of the masks. Each file is tokenized line by line and the
lines on which each word occurs are recorded.

Files that cannot be read are skipped. Re-scanning a directory replaces
the line lists of files seen before.`,
		Example: `  linedex scan ./logs
  linedex scan -m '*.md' -m '*.txt' ~/notes
  linedex scan -e windows-1251 ./legacy
  linedex scan --watch ./logs`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringSliceVarP(&scanMasks, "mask", "m", nil, "File name masks (default from config: *.txt, *.log, *.csv)")
	cmd.Flags().StringVarP(&scanEncoding, "encoding", "e", "", "Text encoding of the files (default from config: UTF-8)")
	cmd.Flags().BoolVar(&scanCorrectDrift, "correct-drift", false, "Subtract previous counts when re-scanning a file")
	cmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Keep running and re-index files as they change")
	cmd.Flags().DurationVar(&scanDebounce, "debounce", indexer.DefaultDebounce, "Quiet period before a changed file is re-indexed (with --watch)")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	req := indexer.Request{Root: args[0], Masks: scanMasks, Encoding: scanEncoding}
	if len(req.Masks) == 0 {
		req.Masks = cfg.Index.Masks
	}
	if req.Encoding == "" {
		req.Encoding = cfg.Index.Encoding
	}

	ix := indexer.New(store, indexer.Options{
		CorrectDrift: scanCorrectDrift || cfg.Index.CorrectDrift,
		Observer:     progressObserver{},
	})
	sum, err := ix.Scan(ctx, req)
	if err != nil {
		return err
	}

	if !quiet {
		p.PrintSuccess(fmt.Sprintf("Indexed %d of %d files under %s", sum.Indexed, sum.Matched, p.FormatPath(sum.Root)))
		p.PrintListItem("Postings", fmt.Sprintf("%d", sum.Postings))
		if sum.Skipped > 0 {
			p.PrintListItem("Skipped", fmt.Sprintf("%d unreadable", sum.Skipped))
		}
		if sum.Failed > 0 || sum.Errors > 0 {
			p.PrintWarning(fmt.Sprintf("%d files failed, %d storage errors", sum.Failed, sum.Errors))
		}
		p.PrintListItem("Duration", sum.Duration.Round(time.Millisecond).String())
	}

	if !scanWatch {
		return nil
	}
	watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if !quiet {
		p.PrintInfo("Watching for changes, press Ctrl+C to stop")
	}
	return ix.Watch(watchCtx, req, scanDebounce)
}

// progressObserver reports scan progress through the logger.
type progressObserver struct{}

func (progressObserver) ScanStarted(total int) {
	log.Debug("files to index", "total", total)
}

func (progressObserver) Progress(done, total int) {
	if done == total || done%100 == 0 {
		log.Debug("scan progress", "done", done, "total", total)
	}
}

func (progressObserver) ScanFinished(indexer.Summary) {}
