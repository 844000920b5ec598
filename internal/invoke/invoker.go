package invoke

import (
	"context"
	"fmt"
	"time"

	"nastrun/internal/workspace"
)

// Invoker runs the Engine against a prepared workspace and deck text
// under a wall-clock deadline. Implementations must be safe for
// concurrent use; each Invoke owns its own child process, so
// concurrent invocations from one parent never share Engine state.
type Invoker interface {
	// Invoke runs one Engine invocation. The deck is delivered on the
	// Engine's input stream; the report is collected from its output
	// stream. A nil error with a nonzero exit code is a successful
	// transport with an analytical verdict for the caller to inspect.
	// On ErrTimeout the partial outcome is returned with the error.
	Invoke(ctx context.Context, layout *workspace.Layout, deckText string, timeout time.Duration) (*Outcome, error)

	// Strategy identifies the invocation strategy.
	Strategy() Strategy

	// Validate checks whether this invoker can run at all, without
	// touching any workspace. Returns an ErrLaunch-wrapped error when
	// it cannot.
	Validate() error
}

// New returns the invoker for a strategy name.
func New(strategy Strategy, executable string) (Invoker, error) {
	switch strategy {
	case Subprocess:
		return NewSubprocessInvoker(executable), nil
	case InProcess:
		return NewInProcessInvoker(), nil
	default:
		return nil, fmt.Errorf("unknown invocation strategy %q", strategy)
	}
}
