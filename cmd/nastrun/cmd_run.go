package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nastrun/internal/archive"
	"nastrun/internal/export"
	"nastrun/internal/invoke"
	"nastrun/internal/runner"
)

var (
	runJobs      int
	runJSON      bool
	runXLSXDir   string
	runToArchive bool
)

// runCmd executes one or more decks through the full pipeline.
var runCmd = &cobra.Command{
	Use:   "run [deck...]",
	Short: "Run input decks through the Engine and decode their reports",
	Long: `Runs each deck through the full pipeline: scratch workspace, isolated
Engine invocation, report decoding, cleanup. Multiple decks run
concurrently, each in its own workspace and child.

A non-zero Engine exit or a fatal message in the report is an
analytical result, not a command failure; the command fails only on
configuration, launch, or timeout errors.

Examples:
  nastrun run cantilever.bdf
  nastrun run --strategy inprocess --timeout 2m decks/*.bdf
  nastrun run --xlsx out/ --archive modal.bdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecks,
}

func init() {
	runCmd.Flags().IntVar(&runJobs, "jobs", 4, "Maximum concurrent runs")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print full results as JSON")
	runCmd.Flags().StringVar(&runXLSXDir, "xlsx", "", "Write one results workbook per deck into this directory")
	runCmd.Flags().BoolVar(&runToArchive, "archive", false, "Archive run outcomes")
}

func runDecks(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	coord, err := runner.New(cfg)
	if err != nil {
		return err
	}

	var store *archive.Store
	if runToArchive || cfg.Archive.Enabled {
		store, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	if runXLSXDir != "" {
		if err := os.MkdirAll(runXLSXDir, 0755); err != nil {
			return fmt.Errorf("failed to create workbook directory: %w", err)
		}
	}

	var mu sync.Mutex
	results := make([]*runner.Result, 0, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runJobs)
	for _, deck := range args {
		deck := deck
		g.Go(func() error {
			res, runErr := coord.Run(gctx, deck, runner.Options{})
			if res != nil {
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				if err := postProcess(res, store); err != nil {
					return err
				}
			}
			// Timeouts are reported per deck without aborting the batch.
			if errors.Is(runErr, invoke.ErrTimeout) {
				logger.Warn("Run timed out", zap.String("deck", deck))
				return nil
			}
			return runErr
		})
	}
	err = g.Wait()

	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(results); encErr != nil {
			return encErr
		}
	} else {
		for _, res := range results {
			printSummary(res)
		}
	}
	return err
}

// postProcess archives and exports one finished run.
func postProcess(res *runner.Result, store *archive.Store) error {
	if store != nil {
		_, err := store.Save(archive.RunRecord{
			Deck:      res.Deck,
			Strategy:  string(res.Outcome.Strategy),
			ExitCode:  res.Outcome.ExitCode,
			Completed: res.Outcome.Completed,
			TimedOut:  res.Outcome.TimedOut,
			WallTime:  res.Outcome.WallTime,
			Report:    res.Outcome.Report,
			Log:       res.Outcome.Log,
		})
		if err != nil {
			return err
		}
	}
	if runXLSXDir != "" && res.Decoded != nil {
		base := strings.TrimSuffix(res.Deck, filepath.Ext(res.Deck))
		path := filepath.Join(runXLSXDir, base+".xlsx")
		if err := export.WriteXLSX(path, res.Decoded); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(res *runner.Result) {
	status := "FAILED"
	if res.Outcome.Completed {
		status = "COMPLETED"
	}
	if res.Outcome.TimedOut {
		status = "TIMED OUT"
	}
	fmt.Printf("%s: %s (exit %d, %s, %s)\n",
		res.Deck, status, res.Outcome.ExitCode,
		res.Outcome.WallTime.Round(time.Millisecond), res.Outcome.Strategy)

	if res.Decoded == nil {
		return
	}
	for _, table := range res.Decoded.Displacements {
		fmt.Printf("  subcase %d: %d displacement rows\n", table.Subcase, len(table.Rows))
	}
	for _, table := range res.Decoded.Stresses {
		fmt.Printf("  subcase %d: %d %s stress rows\n", table.Subcase, len(table.Rows), table.Category)
	}
	if res.Decoded.Eigen != nil {
		fmt.Printf("  %d modes extracted\n", len(res.Decoded.Eigen.Modes))
	}
	if res.Workspace != "" {
		fmt.Printf("  scratch retained at %s\n", res.Workspace)
	}
}
