package invoke

import (
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"nastrun/internal/engine"
)

// sampleReport is what the fake solver prints for a plain static deck.
// The shell-script engine and the in-process fake both emit exactly
// this text, which is what makes cross-mode equivalence checkable.
const sampleReport = `1    NASTRAN EXECUTIVE CONTROL DECK ECHO
     ID CANTILEVER,BEAM
     SOL 1,0
     CEND
1                         D I S P L A C E M E N T   V E C T O R

      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3
            11      G      0.0            0.0           -3.125000E-02   0.0            0.0            0.0

      END OF JOB
`

// fatalReport carries a fatal marker and no normal completion.
const fatalReport = `1    NASTRAN EXECUTIVE CONTROL DECK ECHO
     ID BROKEN,DECK
 *** USER FATAL MESSAGE 316, ILLEGAL DATA ON BULK DATA CARD
`

// fakeSolver is the in-process solver entry registered for tests. It
// keys its behavior off markers inside the deck text so every failure
// mode of the real Engine can be simulated.
func fakeSolver(inputPath, outputPath string) int {
	deck, err := os.ReadFile(inputPath)
	if err != nil {
		return 12
	}
	text := string(deck)

	// The real solver reads its file bindings from the environment.
	if log := os.Getenv("LOGNM"); log != "" && log != "none" {
		_ = os.WriteFile(log, []byte("fake solver log\n"), 0644)
	}

	switch {
	case strings.Contains(text, "HANG"):
		time.Sleep(30 * time.Second)
		return 0
	case strings.Contains(text, "FATAL"):
		_ = os.WriteFile(outputPath, []byte(fatalReport), 0644)
		return 3
	case strings.Contains(text, "EXIT86"):
		// Exercises a solver exit code colliding with engine.ExitNoEntry.
		_ = os.WriteFile(outputPath, []byte(fatalReport), 0644)
		return 86
	default:
		_ = os.WriteFile(outputPath, []byte(sampleReport), 0644)
		return 0
	}
}

func TestMain(m *testing.M) {
	engine.Register(fakeSolver)
	// If this test binary was re-exec'd as an engine child, run the
	// fake solver and exit; otherwise fall through to the tests.
	engine.MaybeRunChild()
	goleak.VerifyTestMain(m)
}
