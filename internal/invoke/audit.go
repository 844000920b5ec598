package invoke

import (
	"sync"
	"time"
)

// AuditEventType categorizes invocation lifecycle events.
type AuditEventType string

const (
	AuditEventStart    AuditEventType = "start"
	AuditEventComplete AuditEventType = "complete"
	AuditEventKilled   AuditEventType = "killed"
	AuditEventError    AuditEventType = "error"
)

// AuditEvent records one invocation lifecycle transition for callers
// that keep an execution trail.
type AuditEvent struct {
	Type          AuditEventType `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	Strategy      Strategy       `json:"strategy"`
	WorkspaceRoot string         `json:"workspace_root"`
	ExitCode      int            `json:"exit_code,omitempty"`
	Detail        string         `json:"detail,omitempty"`
}

// auditor is the shared audit-callback mechanism embedded by both
// invoker implementations.
type auditor struct {
	mu       sync.RWMutex
	callback func(AuditEvent)
}

// SetAuditCallback sets the callback for audit events.
func (a *auditor) SetAuditCallback(callback func(AuditEvent)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = callback
}

func (a *auditor) emit(event AuditEvent) {
	a.mu.RLock()
	cb := a.callback
	a.mu.RUnlock()
	if cb != nil {
		cb(event)
	}
}
