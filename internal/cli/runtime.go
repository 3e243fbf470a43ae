package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/steviee/assetguard/internal/cli/config"
	"github.com/steviee/assetguard/internal/download"
	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/guard"
	"github.com/steviee/assetguard/internal/state"
)

// RuntimeResult is the output of the runtime command
type RuntimeResult struct {
	JavaExec   string `json:"javaExec"`
	Downloaded bool   `json:"downloaded"`
}

// NewRuntimeCommand creates the runtime command
func NewRuntimeCommand() *cobra.Command {
	var javaMajor int

	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Install a Java runtime",
		Long: `Make sure a Java runtime is available below the game directory.

A runtime that is already installed is reused. Otherwise the latest build of
the requested major version is downloaded from Adoptium and extracted.`,
		Example: `  # Install the configured runtime
  assetguard runtime

  # Install Java 17
  assetguard runtime --java 17`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuntime(cmd.Context(), cmd.OutOrStdout(), javaMajor)
		},
	}

	cmd.Flags().IntVar(&javaMajor, "java", 0, "Java major version (overrides runtime.java_major)")

	return cmd
}

func runRuntime(ctx context.Context, stdout io.Writer, javaMajor int) error {
	jsonMode := config.JSONMode()

	cfg, layout, err := config.Load(ctx)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	gc := guard.FromState(cfg, layout)
	if javaMajor > 0 {
		gc.JavaMajor = javaMajor
	}
	gc.Observer = logObserver(slog.Default())
	if cfg.Downloads.ProgressThrottle {
		gc.Observer = events.NewThrottle(gc.Observer)
	}

	g, err := guard.New(gc)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}

	lock, err := state.LockLayout(ctx, layout, 0)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release lock", "path", lock.Path(), "error", err)
		}
	}()

	if err := g.ValidateRuntime(ctx); err != nil {
		return outputError(stdout, jsonMode, err)
	}

	summary, err := g.ProcessDownloadQueues(ctx, download.CategoryRuntime)
	if err != nil {
		return outputError(stdout, jsonMode, err)
	}
	if err := summary.Err(); err != nil {
		return outputError(stdout, jsonMode, fmt.Errorf("download runtime: %w", err))
	}

	out := RuntimeResult{JavaExec: g.JavaExecutable(), Downloaded: summary.Downloaded > 0}
	if jsonMode {
		return writeJSON(stdout, "success", out)
	}

	_, _ = fmt.Fprintln(stdout, out.JavaExec)
	return nil
}
