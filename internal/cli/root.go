// Package cli implements the linesort command line.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tamirms/linesort/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCommand creates the root command for the linesort CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "linesort",
		Short: "linesort - external merge sort for numbered text lines",
		Long: `Sort "<number>. <text>" files larger than memory.

Records are ordered by text, then by number. Lines that are not records
are skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML settings file")

	// Add subcommands
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// loadConfig returns the settings file named by --config, or the defaults.
func (o *RootOptions) loadConfig() (config.File, error) {
	if o.ConfigPath == "" {
		return config.Default(), nil
	}
	f, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.File{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return f, nil
}

// logger writes text logs to w; --verbose enables debug records.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
