package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/config"
	"github.com/stormlightlabs/linedex/internal/db"
)

// Version is stamped by the build.
var Version = "0.1.0"

var (
	cfg      *config.Config
	dbPath   string
	dbDriver string
	verbose  bool
	quiet    bool
	noColor  bool

	p = NewPrinter()
)

var rootCmd = &cobra.Command{
	Use:   "linedex",
	Short: "Index text files by word and search them by line",
	Long: `Linedex walks a directory tree, records which lines of which files
contain each word, and answers whole-word queries from that index or
regular-expression queries by scanning the indexed files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	loadConfig()
	rootCmd.AddCommand(
		newInitCommand(),
		newScanCommand(),
		newClearCommand(),
		newSearchCommand(),
		newStatsCommand(),
		newFilesCommand(),
		newConfigCommand(),
		newServeCommand(),
		newMCPCommand(),
	)
	err := rootCmd.Execute()
	if err != nil {
		p.PrintError(err.Error())
	}
	return err
}

func loadConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "Database path, name or DSN (default: $XDG_DATA_HOME/linedex/index.db)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: sqlite, sqlite3 or postgres (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// setup applies the logging and color flags before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.ErrorLevel
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())

	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

func resolveDriver() string {
	if dbDriver != "" {
		return dbDriver
	}
	return cfg.Database.Driver
}

func resolveDBPath() (string, error) {
	return cfg.ResolveDatabasePath(dbPath)
}

// openStore opens the configured store and makes sure the schema exists.
func openStore(ctx context.Context) (*db.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	driver := resolveDriver()
	if driver != db.DriverPostgres {
		if err := db.EnsureDir(path); err != nil {
			return nil, err
		}
	}

	store, err := db.Open(ctx, db.Options{Driver: driver, DSN: path})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
