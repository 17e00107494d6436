package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/config"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [database-name]",
		Short: "Create an empty index database",
		Long: `Create the index database and its tables.

If no name is given the default database is created. A bare name is
placed in the XDG data directory as <name>.db; paths and postgres DSNs
are used as given. Running init on an existing database is harmless.`,
		Example: `  linedex init
  linedex init work
  linedex init -d /tmp/index.db
  linedex init --driver postgres -d postgres://localhost/linedex`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && dbPath == "" {
		dbPath = args[0]
	}
	target, err := resolveDBPath()
	if err != nil {
		return err
	}

	existed := false
	if !config.IsDSN(target) {
		if _, err := os.Stat(target); err == nil {
			existed = true
		}
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if quiet {
		return nil
	}
	if existed {
		p.PrintInfo(fmt.Sprintf("Schema verified in %s", p.FormatPath(target)))
		return nil
	}
	p.PrintSuccess(fmt.Sprintf("Initialized %s (%s)", p.FormatPath(target), store.Dialect().Name))
	return nil
}

