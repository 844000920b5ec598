package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nastrun/internal/archive"
	"nastrun/internal/runner"
	"nastrun/internal/watch"
)

var watchDebounce time.Duration

// watchCmd re-runs decks as they change on disk.
var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and re-run decks when they change",
	Long: `Watches a directory for deck file changes (.bdf, .dat, .nas) and runs
each deck after its edits settle. Rapid editor save bursts trigger one
run, not one per write. Stop with Ctrl-C.

Example:
  nastrun watch decks/ --strategy inprocess`,
	Args: cobra.MaximumNArgs(1),
	RunE: watchDecks,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a changed deck runs")
}

func watchDecks(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	coord, err := runner.New(cfg)
	if err != nil {
		return err
	}

	var store *archive.Store
	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	run := func(ctx context.Context, deckPath string) {
		res, runErr := coord.Run(ctx, deckPath, runner.Options{})
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Warn("Run failed", zap.String("deck", deckPath), zap.Error(runErr))
		}
		if res == nil {
			return
		}
		printSummary(res)
		if store != nil {
			if err := postProcess(res, store); err != nil {
				logger.Warn("Failed to archive run", zap.Error(err))
			}
		}
	}

	dw, err := watch.New(dir, run, watchDebounce)
	if err != nil {
		return err
	}
	if err := dw.Start(ctx); err != nil {
		return err
	}
	logger.Info("Watching for deck changes", zap.String("dir", dir))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("Received shutdown signal")
	cancel()
	dw.Stop()
	return nil
}
