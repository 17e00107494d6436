package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/stormlightlabs/linedex/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the linedex configuration file.

Configuration is stored in TOML format in the XDG config directory.
Set LINEDEX_CONFIG to use another file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigEditCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE:  runConfigShow,
	}

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	current, err := config.Load()
	if err != nil {
		return err
	}

	configPath, err := config.FilePath()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "# Configuration file: %s\n\n", configPath)
	return toml.NewEncoder(cmd.OutOrStdout()).Encode(current)
}

func newConfigEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open configuration in editor",
		RunE:  runConfigEdit,
	}

	return cmd
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, err := config.FilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := config.DefaultConfig().Save(); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	editCmd := exec.Command(editor, configPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr

	return editCmd.Run()
}

func newConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE:      runConfigSet,
	}

	return cmd
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	current, err := config.Load()
	if err != nil {
		return err
	}
	if err := current.Set(key, value); err != nil {
		return err
	}
	if err := current.Save(); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	}
	return nil
}

func newConfigGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE:      runConfigGet,
	}

	return cmd
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	current, err := config.Load()
	if err != nil {
		return err
	}

	value, err := current.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func newConfigPathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE:  runConfigPath,
	}

	return cmd
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.FilePath()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}
