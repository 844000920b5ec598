package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"nastrun/internal/logging"
	"nastrun/internal/workspace"
)

// SubprocessInvoker starts the Engine binary as a child process with
// the workspace's role bindings injected as environment variables,
// feeds the deck on stdin and captures the report from stdout.
type SubprocessInvoker struct {
	auditor
	executable     string
	maxOutputBytes int64
}

// NewSubprocessInvoker creates a subprocess invoker for the Engine
// binary at executable.
func NewSubprocessInvoker(executable string) *SubprocessInvoker {
	return &SubprocessInvoker{
		executable:     executable,
		maxOutputBytes: DefaultMaxOutputBytes,
	}
}

// SetMaxOutputBytes overrides the report capture cap.
func (e *SubprocessInvoker) SetMaxOutputBytes(n int64) {
	if n > 0 {
		e.maxOutputBytes = n
	}
}

// Strategy identifies this invoker.
func (e *SubprocessInvoker) Strategy() Strategy { return Subprocess }

// Validate checks that the Engine binary exists.
func (e *SubprocessInvoker) Validate() error {
	if e.executable == "" {
		return fmt.Errorf("%w: no engine binary configured", ErrLaunch)
	}
	if _, err := os.Stat(e.executable); err != nil {
		return fmt.Errorf("%w: engine binary not found: %s", ErrLaunch, e.executable)
	}
	return nil
}

// Invoke runs the Engine binary once against the layout.
func (e *SubprocessInvoker) Invoke(ctx context.Context, layout *workspace.Layout, deckText string, timeout time.Duration) (*Outcome, error) {
	timer := logging.StartTimer(logging.CategoryInvoke, "subprocess invocation")
	defer timer.Stop()

	if err := e.Validate(); err != nil {
		return nil, err
	}

	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, e.executable)
	cmd.Dir = layout.Root
	cmd.Env = append(os.Environ(), layout.Environ()...)
	cmd.Stdin = strings.NewReader(deckText)
	// Bound the wait after a kill so a child holding its pipes open
	// cannot hang the caller.
	cmd.WaitDelay = 5 * time.Second

	var reportBuf, stderrBuf bytes.Buffer
	limited := &limitedWriter{w: &reportBuf, max: e.maxOutputBytes}
	cmd.Stdout = limited
	cmd.Stderr = &stderrBuf

	out := &Outcome{Strategy: Subprocess, ExitCode: -1}

	logging.Invoke("Starting engine %s (workspace=%s, deck=%d bytes, timeout=%s)",
		e.executable, layout.Root, len(deckText), timeout)
	e.emit(AuditEvent{
		Type: AuditEventStart, Timestamp: time.Now(),
		Strategy: Subprocess, WorkspaceRoot: layout.Root,
	})

	out.StartedAt = time.Now()
	err := cmd.Run()
	out.FinishedAt = time.Now()
	out.WallTime = out.FinishedAt.Sub(out.StartedAt)

	out.Report = reportBuf.String()
	out.Truncated = limited.truncated
	out.TruncatedBytes = limited.discarded
	out.Log = gatherLog(layout, stderrBuf.String())
	out.Usage = usageFromState(cmd.ProcessState)

	if err != nil {
		switch {
		case errors.Is(execCtx.Err(), context.DeadlineExceeded):
			out.TimedOut = true
			logging.InvokeWarn("Engine killed at deadline %s (workspace=%s)", timeout, layout.Root)
			e.emit(AuditEvent{
				Type: AuditEventKilled, Timestamp: time.Now(),
				Strategy: Subprocess, WorkspaceRoot: layout.Root,
				Detail: fmt.Sprintf("timeout after %s", timeout),
			})
			return out, fmt.Errorf("engine exceeded %s deadline: %w", timeout, ErrTimeout)

		case errors.Is(execCtx.Err(), context.Canceled):
			out.Canceled = true
			e.emit(AuditEvent{
				Type: AuditEventKilled, Timestamp: time.Now(),
				Strategy: Subprocess, WorkspaceRoot: layout.Root,
				Detail: "context canceled",
			})
			return out, fmt.Errorf("engine run canceled: %w", context.Canceled)

		default:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				// The Engine ran and terminated itself. Nonzero exit is
				// an analytical signal, not a transport failure.
				out.ExitCode = exitErr.ExitCode()
				logging.InvokeDebug("Engine exited nonzero: %d", out.ExitCode)
			} else {
				logging.InvokeError("Engine launch failed: %v", err)
				e.emit(AuditEvent{
					Type: AuditEventError, Timestamp: time.Now(),
					Strategy: Subprocess, WorkspaceRoot: layout.Root,
					Detail: err.Error(),
				})
				return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
			}
		}
	} else {
		out.ExitCode = 0
	}

	e.emit(AuditEvent{
		Type: AuditEventComplete, Timestamp: time.Now(),
		Strategy: Subprocess, WorkspaceRoot: layout.Root,
		ExitCode: out.ExitCode,
	})
	logging.Invoke("Engine done: exit=%d wall=%s report=%d bytes",
		out.ExitCode, out.WallTime, len(out.Report))
	return out, nil
}

// gatherLog combines the Engine's log file with anything the child
// wrote to stderr.
func gatherLog(layout *workspace.Layout, stderr string) string {
	var log string
	if data, err := os.ReadFile(layout.LogPath); err == nil {
		log = string(data)
	}
	if stderr != "" {
		if log != "" && !strings.HasSuffix(log, "\n") {
			log += "\n"
		}
		log += stderr
	}
	return log
}
