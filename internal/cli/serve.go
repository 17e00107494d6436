package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stormlightlabs/linedex/internal/indexer"
	"github.com/stormlightlabs/linedex/internal/metrics"
	"github.com/stormlightlabs/linedex/internal/search"
	"github.com/stormlightlabs/linedex/internal/web"
)

var serveAddr string

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long: `Serve search, scan, clear and statistics over HTTP, plus Prometheus
metrics on /metrics.

Scans and clears are queued to a single background worker that owns its
own database connection; searches use a second connection.`,
		Example: `  linedex serve
  linedex serve --http :9090`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "http", "", "HTTP service address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer writer.Close()

	reader, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer reader.Close()

	m := metrics.New()
	engine, err := search.NewEngine(reader, search.Options{Encoding: cfg.Index.Encoding, Recorder: m})
	if err != nil {
		return err
	}

	worker := indexer.NewWorker(writer, indexer.Options{
		CorrectDrift: cfg.Index.CorrectDrift,
		Observer:     indexer.Observers{progressObserver{}, m.ScanObserver()},
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := web.NewServer(engine, reader, worker, web.Options{
		Addr:          addr,
		DefaultLimit:  cfg.Search.DefaultLimit,
		CaseSensitive: cfg.Search.CaseSensitive,
		Masks:         cfg.Index.Masks,
		Encoding:      cfg.Index.Encoding,
		Metrics:       m,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error { return srv.Start(gctx) })

	err = g.Wait()
	log.Info("server stopped")
	return err
}
