package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nastrun/internal/config"
	"nastrun/internal/engine"
	"nastrun/internal/logging"
)

var (
	// Global flags
	configPath    string
	verbose       bool
	exePath       string
	rfDir         string
	dbMemWords    int
	openCoreWords int
	scratchRoot   string
	strategy      string
	timeout       time.Duration
	retainScratch bool

	// Loaded configuration, resolved in PersistentPreRunE.
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nastrun",
	Short: "nastrun - NASTRAN-95 execution and result-extraction layer",
	Long: `nastrun wraps the legacy NASTRAN-95 batch solver behind a safe,
repeatable run pipeline.

Each run gets a private scratch workspace, the Engine is launched in an
isolated child (subprocess or re-executed in-process image), and the
printed report is decoded into typed displacement, stress, and
eigenvalue tables. Exit status is treated strictly as a transport
signal: analytical success or failure is read from the report itself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd)

		if cfg.Logging.DebugMode || verbose {
			opts := logging.Options{
				DebugMode:  true,
				Level:      cfg.Logging.Level,
				JSONFormat: cfg.Logging.JSONFormat,
				Categories: cfg.Logging.Categories,
			}
			if verbose {
				opts.Level = "debug"
			}
			if err := logging.Configure(".", opts); err != nil {
				logger.Warn("File logging unavailable", zap.Error(err))
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// applyFlagOverrides lays explicitly set flags over the loaded config,
// so precedence is flags > environment > file > defaults.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("exe") {
		cfg.Executable = exePath
	}
	if flags.Changed("rfdir") {
		cfg.RFDir = rfDir
	}
	if flags.Changed("dbmem") {
		cfg.DBMemWords = dbMemWords
	}
	if flags.Changed("ocmem") {
		cfg.OpenCoreWords = openCoreWords
	}
	if flags.Changed("scratch") {
		cfg.ScratchRoot = scratchRoot
	}
	if flags.Changed("strategy") {
		cfg.Strategy = strategy
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout.String()
	}
	if flags.Changed("retain") {
		cfg.RetainScratch = retainScratch
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", ".nastrun/config.yaml", "Config file path")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVar(&exePath, "exe", "", "Engine binary path (subprocess mode)")
	pf.StringVar(&rfDir, "rfdir", "", "Rigid-format resource directory")
	pf.IntVar(&dbMemWords, "dbmem", config.DefaultDBMemWords, "Database memory in words")
	pf.IntVar(&openCoreWords, "ocmem", config.DefaultOpenCoreWords, "Open-core memory in words")
	pf.StringVar(&scratchRoot, "scratch", "", "Parent directory for scratch workspaces")
	pf.StringVar(&strategy, "strategy", config.StrategySubprocess, "Invocation strategy: subprocess or inprocess")
	pf.DurationVar(&timeout, "timeout", config.DefaultTimeout, "Wall-clock limit per run")
	pf.BoolVar(&retainScratch, "retain", false, "Keep scratch workspaces after runs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	// In the re-executed isolation image this runs the Engine entry and
	// exits; it must come before any command machinery.
	engine.MaybeRunChild()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
