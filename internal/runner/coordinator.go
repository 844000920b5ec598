// Package runner coordinates one Engine run end to end: workspace
// materialization, invocation, report decoding, cleanup. Data flows
// strictly one direction; no stage feeds back into an earlier one
// within a run.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nastrun/internal/config"
	"nastrun/internal/invoke"
	"nastrun/internal/logging"
	"nastrun/internal/report"
	"nastrun/internal/workspace"
)

// State tracks a run through its lifecycle:
// Created → WorkspaceReady → Invoked → Decoded → (Cleaned | Retained).
type State string

const (
	StateCreated        State = "created"
	StateWorkspaceReady State = "workspace_ready"
	StateInvoked        State = "invoked"
	StateDecoded        State = "decoded"
	StateCleaned        State = "cleaned"
	StateRetained       State = "retained"
)

// Options are per-run overrides on top of the coordinator's config.
// Zero fields fall back to the configured values.
type Options struct {
	Timeout       time.Duration
	Strategy      invoke.Strategy
	RetainScratch bool
	DBMemWords    int
	OpenCoreWords int
}

// Result is the aggregate product of one run.
type Result struct {
	// Deck is the display name of the deck source (file base name, or
	// "inline" for deck text passed directly).
	Deck string `json:"deck"`

	// Outcome is the raw invocation result. Outcome.Completed is
	// filled in from the decoder, never from exit status: the Engine
	// can exit zero while the report signals a fatal or unconverged
	// analysis. Exit status is strictly a transport signal.
	Outcome invoke.Outcome `json:"outcome"`

	// Decoded is present whenever any report text was captured, even
	// after a timeout: partial output is diagnostically valuable.
	Decoded *report.Results `json:"decoded,omitempty"`

	// Workspace is the retained scratch root, empty when cleaned.
	Workspace string `json:"workspace,omitempty"`

	State State `json:"state"`
}

// Coordinator drives runs against one validated configuration. Safe
// for concurrent use: each run owns its own workspace and child
// process.
type Coordinator struct {
	cfg   *config.Config
	audit func(invoke.AuditEvent)
}

// New validates the configuration and returns a coordinator.
// Configuration problems surface here, before any invocation.
func New(cfg *config.Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Coordinator{cfg: cfg}, nil
}

// SetAuditCallback forwards invocation audit events to callback.
func (c *Coordinator) SetAuditCallback(callback func(invoke.AuditEvent)) {
	c.audit = callback
}

// Run executes one deck. deck is either a path to a deck file or the
// deck text itself. The call blocks for the duration of the run; the
// whole invocation is the sole cancellable unit, driven by the
// timeout. On ErrTimeout the partial result is returned with the
// error; on launch failure no result exists.
func (c *Coordinator) Run(ctx context.Context, deck string, opts Options) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryRun, "run")
	defer timer.Stop()

	deckText, deckName, err := resolveDeck(deck)
	if err != nil {
		return nil, err
	}

	opts = c.withDefaults(opts)
	// Per-run overrides face the same capacity invariant as the
	// configuration: an oversized open-core request would overrun the
	// Engine's static working array, so it must die here, before any
	// workspace exists.
	if opts.OpenCoreWords > config.OpenCoreCapacityWords {
		return nil, &config.ConfigError{
			Field: "open_core_words",
			Reason: fmt.Sprintf("%d exceeds engine capacity of %d words",
				opts.OpenCoreWords, config.OpenCoreCapacityWords),
		}
	}
	res := &Result{Deck: deckName, State: StateCreated}

	layout, err := workspace.Create(workspace.Params{
		RFDir:         c.cfg.RFDir,
		DBMemWords:    opts.DBMemWords,
		OpenCoreWords: opts.OpenCoreWords,
		ScratchRoot:   c.cfg.ScratchRoot,
	})
	if err != nil {
		// Failure before Invoked: nothing to clean beyond what
		// workspace.Create left behind (nothing).
		return nil, fmt.Errorf("workspace creation failed: %w", err)
	}
	res.State = StateWorkspaceReady
	logging.Run("Run %s: workspace ready at %s", deckName, layout.Root)

	invoker, err := invoke.New(opts.Strategy, c.cfg.Executable)
	if err != nil {
		workspace.Destroy(layout)
		return nil, err
	}
	if c.audit != nil {
		type audited interface{ SetAuditCallback(func(invoke.AuditEvent)) }
		if a, ok := invoker.(audited); ok {
			a.SetAuditCallback(c.audit)
		}
	}

	outcome, invokeErr := invoker.Invoke(ctx, layout, deckText, opts.Timeout)
	if outcome == nil {
		// Launch failure: the run never started. The workspace holds
		// nothing of diagnostic value.
		if !opts.RetainScratch {
			workspace.Destroy(layout)
		}
		return nil, invokeErr
	}
	res.State = StateInvoked
	res.Outcome = *outcome

	// Decode whatever text was captured, best effort, even after a
	// transport failure at or beyond invocation.
	res.Decoded = report.Decode(res.Outcome.Report)
	res.Outcome.Completed = res.Decoded.Completed
	res.State = StateDecoded
	logging.Run("Run %s: exit=%d completed=%v displacement_tables=%d stress_tables=%d",
		deckName, res.Outcome.ExitCode, res.Outcome.Completed,
		len(res.Decoded.Displacements), len(res.Decoded.Stresses))

	if opts.RetainScratch {
		res.Workspace = layout.Root
		res.State = StateRetained
	} else {
		workspace.Destroy(layout)
		res.State = StateCleaned
	}

	return res, invokeErr
}

// withDefaults fills zero option fields from the configuration.
func (c *Coordinator) withDefaults(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = c.cfg.TimeoutDuration()
	}
	if opts.Strategy == "" {
		opts.Strategy = invoke.Strategy(c.cfg.Strategy)
	}
	if opts.DBMemWords <= 0 {
		opts.DBMemWords = c.cfg.DBMemWords
	}
	if opts.OpenCoreWords <= 0 {
		opts.OpenCoreWords = c.cfg.OpenCoreWords
	}
	if !opts.RetainScratch {
		opts.RetainScratch = c.cfg.RetainScratch
	}
	return opts
}

// resolveDeck distinguishes a deck file path from inline deck text.
// Anything that stats as a regular file is read; everything else is
// passed through as the deck itself.
func resolveDeck(deck string) (text, name string, err error) {
	if info, statErr := os.Stat(deck); statErr == nil && info.Mode().IsRegular() {
		data, readErr := os.ReadFile(deck)
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read deck %s: %w", deck, readErr)
		}
		return string(data), filepath.Base(deck), nil
	}
	return deck, "inline", nil
}
