// Command fresh is the entry point for the Fresh editor.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fresh-editor/fresh/internal/app"
)

const shutdownTimeout = 5 * time.Second

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:     "fresh [files...]",
		Short:   "Fresh - a plugin-extensible terminal text editor",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = args
			if opts.WorkspacePath == "" && len(args) > 0 {
				if abs, err := filepath.Abs(args[0]); err == nil {
					opts.WorkspacePath = filepath.Dir(abs)
				}
			}
			return runEditor(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "configuration file path (not read: the project config is <workspace>/config.toml)")
	flags.StringVarP(&opts.WorkspacePath, "workspace", "w", "", "workspace/project directory")
	flags.BoolVarP(&opts.Debug, "debug", "d", false, "debug flag (no effect)")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVarP(&opts.ReadOnly, "readonly", "R", false, "read-only flag (not applied: files open writable)")
	flags.StringSliceVar(&opts.PluginPaths, "plugin-path", nil, "additional plugin search directory (repeatable)")

	return cmd
}

func runEditor(opts app.Options) error {
	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
	}

	application, err := app.New(opts)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := application.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}

	if runErr != nil && !errors.Is(runErr, app.ErrQuit) && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
