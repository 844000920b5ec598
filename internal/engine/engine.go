// Package engine is the binding point between nastrun and the
// NASTRAN-95 solver when it is embedded as a library call rather than
// spawned as an external binary.
//
// The solver is a single-shot program: it owns one private mutable
// memory region, is not reentrant, and terminates the hosting process
// as its normal completion path. It therefore must never be called
// twice in one address space. The in-process invocation strategy deals
// with this the only safe way: the current executable re-execs itself
// as a child, the child runs the registered entry routine exactly
// once, and the solver's terminating exit kills only that child. The
// parent observes an ordinary exit status.
//
// A cgo binding registers the real solver entry from an init function;
// tests register fakes.
package engine

import (
	"fmt"
	"os"
	"sync"
)

// Entry is the solver's entry routine: read the deck at inputPath,
// write the printed report to outputPath, return the solver exit code.
// The routine may call os.Exit; inside an engine child that is the
// expected completion path.
type Entry func(inputPath, outputPath string) int

// ExitNoEntry is the exit code an engine child reports when no entry
// routine was registered in the re-exec'd binary. The code alone is
// not decisive: solver exit codes share the same 0..255 space, so a
// child also prints NoEntryMarker to stderr, and the parent requires
// both before treating a run as never started.
const ExitNoEntry = 86

// NoEntryMarker is the stderr line fragment an engine child emits when
// it has no registered entry routine.
const NoEntryMarker = "no solver entry registered in this binary"

// Environment variables that mark a process as an engine child.
// Internal protocol between the in-process invoker and MaybeRunChild.
const (
	childFlagEnv   = "NASTRUN_ENGINE_CHILD"
	childInputEnv  = "NASTRUN_ENGINE_INPUT"
	childOutputEnv = "NASTRUN_ENGINE_OUTPUT"
)

var (
	mu    sync.RWMutex
	entry Entry
)

// Register installs the solver entry routine. Later registrations
// replace earlier ones; passing nil clears the binding.
func Register(e Entry) {
	mu.Lock()
	defer mu.Unlock()
	entry = e
}

// Registered reports whether an entry routine is bound.
func Registered() bool {
	mu.RLock()
	defer mu.RUnlock()
	return entry != nil
}

// ChildEnviron returns the extra environment entries that turn a
// re-exec'd copy of this binary into an engine child solving
// inputPath into outputPath.
func ChildEnviron(inputPath, outputPath string) []string {
	return []string{
		childFlagEnv + "=1",
		childInputEnv + "=" + inputPath,
		childOutputEnv + "=" + outputPath,
	}
}

// MaybeRunChild checks whether this process was re-exec'd as an engine
// child. If so it runs the registered entry routine synchronously and
// exits with the solver's code; it never returns in that case. Call it
// first thing in main, before any other setup. In a normal process it
// returns immediately.
func MaybeRunChild() {
	if os.Getenv(childFlagEnv) != "1" {
		return
	}

	input := os.Getenv(childInputEnv)
	output := os.Getenv(childOutputEnv)

	mu.RLock()
	e := entry
	mu.RUnlock()

	if e == nil {
		fmt.Fprintln(os.Stderr, "engine child: "+NoEntryMarker)
		os.Exit(ExitNoEntry)
	}

	rc := e(input, output)

	// The solver normally exits on its own. If the entry returned,
	// flush buffered output and report its code ourselves.
	os.Stdout.Sync()
	os.Exit(rc)
}
