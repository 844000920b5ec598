//go:build windows

package invoke

import "os"

// usageFromState is a stub on Windows; rusage is not exposed there.
func usageFromState(state *os.ProcessState) *ResourceUsage {
	if state == nil {
		return nil
	}
	return &ResourceUsage{
		UserTime:   state.UserTime(),
		SystemTime: state.SystemTime(),
	}
}
