// Package invoke runs the Engine against a prepared workspace and
// returns its raw textual output. Two strategies implement one
// contract: Subprocess execs the Engine binary, InProcess re-execs the
// current binary and runs the embedded solver entry inside the child.
// Both must be behaviorally indistinguishable to the caller.
//
// The Engine is a legacy single-shot program: its normal completion
// path terminates the hosting process, and its global memory region
// is not reentrant. Every strategy here therefore isolates one
// invocation in one child process and never calls the solver in the
// caller's address space.
//
// Error taxonomy: a nonzero Engine exit code is data, not an error —
// the invocation succeeded at the transport level and the caller
// inspects the outcome. Invoke returns an error only for transport
// failures: ErrLaunch when the child cannot be started, ErrTimeout
// when the wall-clock deadline kills it. On timeout the partial
// outcome is still returned alongside the error.
package invoke

import (
	"errors"
	"time"
)

// Strategy selects how the Engine is invoked.
type Strategy string

const (
	// Subprocess starts the Engine binary as a child process.
	// Default and most robust: the Engine's process-level
	// termination cannot affect the caller.
	Subprocess Strategy = "subprocess"

	// InProcess runs the embedded solver entry routine inside a
	// re-exec'd copy of the current binary. Exists to support
	// embedding the Engine as a library call while keeping the
	// crash/exit isolation its design assumes.
	InProcess Strategy = "inprocess"
)

// Transport-level failures. Analytical failures never surface here.
var (
	// ErrLaunch means the Engine child could not be started. Launch
	// is not retried: legacy engine startup is not flaky, and
	// retrying masks real faults.
	ErrLaunch = errors.New("engine launch failure")

	// ErrTimeout means the wall-clock deadline expired and the child
	// was forcibly terminated. Partial output, if any, accompanies it.
	ErrTimeout = errors.New("engine run timed out")
)

// Outcome is the raw result of one Engine invocation. Immutable once
// produced.
type Outcome struct {
	// Strategy that produced this outcome.
	Strategy Strategy `json:"strategy"`

	// ExitCode is the Engine child's process exit status. Strictly a
	// transport signal: the Engine may exit zero while the report
	// signals a fatal analytical condition.
	ExitCode int `json:"exit_code"`

	// Report is the captured free-form engineering report text.
	Report string `json:"report"`

	// Log is the captured execution log (log file plus any stderr).
	Log string `json:"log"`

	// Completed reports whether the report text signals a normal
	// terminal state. Derived by the decoder, never by exit status.
	Completed bool `json:"completed"`

	// TimedOut marks outcomes whose child was killed at the deadline.
	TimedOut bool `json:"timed_out"`

	// Canceled marks outcomes whose child was killed by caller
	// cancellation (e.g. a shutdown signal), not by deadline expiry.
	Canceled bool `json:"canceled,omitempty"`

	// Truncated marks report capture that hit the output cap.
	Truncated      bool  `json:"truncated,omitempty"`
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	WallTime   time.Duration `json:"wall_time"`

	// Usage is child resource consumption where the platform exposes it.
	Usage *ResourceUsage `json:"usage,omitempty"`
}

// ResourceUsage captures child process resource consumption.
type ResourceUsage struct {
	UserTime    time.Duration `json:"user_time"`
	SystemTime  time.Duration `json:"system_time"`
	MaxRSSBytes int64         `json:"max_rss_bytes"`
}

// DefaultMaxOutputBytes caps captured report text. Engineering reports
// for large models run to tens of megabytes; the cap only guards
// against a runaway Engine flooding memory.
const DefaultMaxOutputBytes int64 = 256 << 20
