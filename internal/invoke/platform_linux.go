//go:build linux

package invoke

import (
	"os"
	"syscall"
	"time"
)

// usageFromState extracts child resource usage from a finished process
// state. On Linux, Maxrss is in kilobytes.
func usageFromState(state *os.ProcessState) *ResourceUsage {
	if state == nil {
		return nil
	}
	ru, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return nil
	}
	return &ResourceUsage{
		UserTime:    time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond,
		SystemTime:  time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond,
		MaxRSSBytes: ru.Maxrss * 1024,
	}
}
