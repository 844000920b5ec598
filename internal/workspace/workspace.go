// Package workspace manages the private, per-run directory tree and
// the environment-variable file bindings the Engine expects. The
// Engine reads its entire file-role configuration from the ambient
// environment; this package is the only place that contract is
// spelled out. Everything above it passes Layout values around.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"nastrun/internal/logging"
)

// Discard is the sentinel binding the Engine recognizes as "do not
// materialize this file".
const Discard = "none"

// Environment variable names of the Engine's file-role contract.
const (
	envRFDir    = "RFDIR"   // rigid-format resource directory
	envDBMem    = "DBMEM"   // database memory, words
	envOpenCore = "OCMEM"   // open-core memory, words
	envScratch  = "DIRCTY"  // scratch directory
	envLog      = "LOGNM"   // execution log
	envNewTape  = "NPTPNM"  // new-problem tape
	envDict     = "DICTNM"  // checkpoint dictionary
	envPlot     = "PLTNM"   // plot file
	envPunch    = "PUNCHNM" // punch file
	envOldTape  = "OPTPNM"  // old-problem tape (restart input)
)

// Numbered unit ranges in the Engine's contract.
const (
	sofCount = 10 // SOF1..SOF10 substructure operating files
	ftnFirst = 11 // FTN11..FTN23 numbered scratch units
	ftnLast  = 23
)

// Params are the inputs needed to materialize one run's layout.
type Params struct {
	RFDir         string
	DBMemWords    int
	OpenCoreWords int
	// ScratchRoot is the shared parent directory; empty means the
	// system temp directory. Each run gets an exclusive subtree.
	ScratchRoot string
}

// Layout maps every logical file role the Engine knows about to an
// absolute path (or Discard) under one per-run directory. Created
// fresh before each run, deleted after unless retained.
type Layout struct {
	// Root is the exclusive per-run directory.
	Root string

	// LogPath is where the Engine writes its execution log.
	LogPath string

	bindings map[string]string
}

// Create allocates a fresh, uniquely named run directory under the
// scratch root and binds every file role. Directory names carry a
// UUID suffix so concurrent creations, including many from a single
// process, never collide.
func Create(p Params) (*Layout, error) {
	timer := logging.StartTimer(logging.CategoryWorkspace, "workspace create")
	defer timer.Stop()

	parent := p.ScratchRoot
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch root %s: %w", parent, err)
	}

	var root string
	for {
		root = filepath.Join(parent, "nastrun_"+uuid.NewString())
		err := os.Mkdir(root, 0700)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
		// UUID collision. Practically unreachable, loop anyway.
	}

	l := &Layout{
		Root:     root,
		LogPath:  filepath.Join(root, "run.log"),
		bindings: make(map[string]string),
	}

	l.bindings[envRFDir] = p.RFDir
	l.bindings[envDBMem] = fmt.Sprintf("%d", p.DBMemWords)
	l.bindings[envOpenCore] = fmt.Sprintf("%d", p.OpenCoreWords)
	l.bindings[envScratch] = root
	l.bindings[envLog] = l.LogPath
	l.bindings[envNewTape] = filepath.Join(root, "run.nptp")
	l.bindings[envDict] = filepath.Join(root, "run.dic")
	l.bindings[envPlot] = filepath.Join(root, "plot.dat")
	l.bindings[envPunch] = filepath.Join(root, "punch.dat")

	// Roles this layer never consumes are bound to the discard
	// sentinel. Every role still has a binding: the Engine probes
	// them all at startup.
	l.bindings[envOldTape] = Discard
	for i := 1; i <= sofCount; i++ {
		l.bindings[fmt.Sprintf("SOF%d", i)] = Discard
	}
	for i := ftnFirst; i <= ftnLast; i++ {
		l.bindings[fmt.Sprintf("FTN%d", i)] = filepath.Join(root, fmt.Sprintf("ftn%d", i))
	}

	logging.Workspace("Created workspace %s (%d role bindings)", root, len(l.bindings))
	return l, nil
}

// Binding returns the path bound to an environment role, or "" if the
// role is unknown.
func (l *Layout) Binding(role string) string {
	return l.bindings[role]
}

// Environ returns the layout's bindings as KEY=VALUE pairs, sorted by
// key for deterministic process environments.
func (l *Layout) Environ() []string {
	env := make([]string, 0, len(l.bindings))
	for k, v := range l.bindings {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Destroy removes the entire per-run directory tree. It is idempotent:
// destroying twice, or after manual deletion, is harmless. Removal
// failure is only a warning; leftover scratch files must never fail a
// run that otherwise succeeded.
func Destroy(l *Layout) {
	if l == nil || l.Root == "" {
		return
	}
	if err := os.RemoveAll(l.Root); err != nil {
		logging.WorkspaceWarn("Failed to remove workspace %s: %v", l.Root, err)
		return
	}
	logging.WorkspaceDebug("Removed workspace %s", l.Root)
}
