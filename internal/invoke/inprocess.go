package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"nastrun/internal/engine"
	"nastrun/internal/logging"
	"nastrun/internal/workspace"
)

// InProcessInvoker runs the embedded solver entry routine without
// spawning the external Engine binary. The solver still cannot run in
// the caller's address space: it is single-shot, its memory region is
// not reentrant, and its success path terminates the process. So the
// invoker re-execs the current executable as a child; engine.MaybeRunChild
// in the child's main recognizes the sentinel environment, runs the
// registered entry routine once, and exits with the solver's code. The
// parent only waits and translates the exit status.
//
// Concurrent invocations are safe: each runs in its own duplicated,
// independent memory image.
type InProcessInvoker struct {
	auditor
	maxOutputBytes int64
}

// NewInProcessInvoker creates an in-process invoker. The solver entry
// must be registered via engine.Register in this binary.
func NewInProcessInvoker() *InProcessInvoker {
	return &InProcessInvoker{maxOutputBytes: DefaultMaxOutputBytes}
}

// Strategy identifies this invoker.
func (e *InProcessInvoker) Strategy() Strategy { return InProcess }

// Validate checks that a solver entry is registered in this binary.
func (e *InProcessInvoker) Validate() error {
	if !engine.Registered() {
		return fmt.Errorf("%w: no solver entry registered for in-process invocation", ErrLaunch)
	}
	return nil
}

// Invoke runs one isolated in-process invocation against the layout.
func (e *InProcessInvoker) Invoke(ctx context.Context, layout *workspace.Layout, deckText string, timeout time.Duration) (*Outcome, error) {
	timer := logging.StartTimer(logging.CategoryInvoke, "in-process invocation")
	defer timer.Stop()

	if err := e.Validate(); err != nil {
		return nil, err
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot locate own executable: %v", ErrLaunch, err)
	}

	// The child solver reads the deck from a file and writes the
	// report to a file; both live in the run's private tree.
	inputPath := filepath.Join(layout.Root, "input.dat")
	outputPath := filepath.Join(layout.Root, "output.out")
	if err := os.WriteFile(inputPath, []byte(deckText), 0644); err != nil {
		return nil, fmt.Errorf("%w: cannot materialize deck: %v", ErrLaunch, err)
	}

	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, self)
	cmd.Dir = layout.Root
	cmd.Env = append(os.Environ(), layout.Environ()...)
	cmd.Env = append(cmd.Env, engine.ChildEnviron(inputPath, outputPath)...)
	cmd.WaitDelay = 5 * time.Second

	// The report goes to the output file; stdout/stderr only carry
	// stray diagnostics from the duplicated child.
	var childNoise bytes.Buffer
	cmd.Stdout = &childNoise
	cmd.Stderr = &childNoise

	out := &Outcome{Strategy: InProcess, ExitCode: -1}

	logging.Invoke("Starting engine child (workspace=%s, deck=%d bytes, timeout=%s)",
		layout.Root, len(deckText), timeout)
	e.emit(AuditEvent{
		Type: AuditEventStart, Timestamp: time.Now(),
		Strategy: InProcess, WorkspaceRoot: layout.Root,
	})

	out.StartedAt = time.Now()
	err = cmd.Run()
	out.FinishedAt = time.Now()
	out.WallTime = out.FinishedAt.Sub(out.StartedAt)
	out.Usage = usageFromState(cmd.ProcessState)

	// Partial output is diagnostically valuable even when the child
	// was killed, so read before classifying the error.
	e.readReport(outputPath, out)
	out.Log = gatherLog(layout, childNoise.String())

	if err != nil {
		switch {
		case errors.Is(execCtx.Err(), context.DeadlineExceeded):
			out.TimedOut = true
			logging.InvokeWarn("Engine child killed at deadline %s (workspace=%s)", timeout, layout.Root)
			e.emit(AuditEvent{
				Type: AuditEventKilled, Timestamp: time.Now(),
				Strategy: InProcess, WorkspaceRoot: layout.Root,
				Detail: fmt.Sprintf("timeout after %s", timeout),
			})
			return out, fmt.Errorf("engine exceeded %s deadline: %w", timeout, ErrTimeout)

		case errors.Is(execCtx.Err(), context.Canceled):
			out.Canceled = true
			e.emit(AuditEvent{
				Type: AuditEventKilled, Timestamp: time.Now(),
				Strategy: InProcess, WorkspaceRoot: layout.Root,
				Detail: "context canceled",
			})
			return out, fmt.Errorf("engine run canceled: %w", context.Canceled)

		default:
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				e.emit(AuditEvent{
					Type: AuditEventError, Timestamp: time.Now(),
					Strategy: InProcess, WorkspaceRoot: layout.Root,
					Detail: err.Error(),
				})
				return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
			}
			out.ExitCode = exitErr.ExitCode()
			// A solver may legitimately exit with ExitNoEntry's value,
			// so require the child's stderr marker too before calling
			// the run never-started.
			if out.ExitCode == engine.ExitNoEntry &&
				strings.Contains(childNoise.String(), engine.NoEntryMarker) {
				return nil, fmt.Errorf("%w: re-exec'd binary has no solver entry", ErrLaunch)
			}
			logging.InvokeDebug("Engine child exited nonzero: %d", out.ExitCode)
		}
	} else {
		out.ExitCode = 0
	}

	e.emit(AuditEvent{
		Type: AuditEventComplete, Timestamp: time.Now(),
		Strategy: InProcess, WorkspaceRoot: layout.Root,
		ExitCode: out.ExitCode,
	})
	logging.Invoke("Engine child done: exit=%d wall=%s report=%d bytes",
		out.ExitCode, out.WallTime, len(out.Report))
	return out, nil
}

// readReport loads the child's report file, honoring the capture cap.
func (e *InProcessInvoker) readReport(path string, out *Outcome) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if int64(len(data)) > e.maxOutputBytes {
		out.Truncated = true
		out.TruncatedBytes = int64(len(data)) - e.maxOutputBytes
		data = data[:e.maxOutputBytes]
	}
	out.Report = string(data)
}
