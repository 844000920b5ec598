package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"nastrun/internal/engine"
)

// Canned Engine reports. The cantilever case is sized so the analytic
// tip deflection is known: P=100, L=10, E=1.0E7, I=1.0667E-01 gives
// delta = P*L^3 / (3*E*I) = 3.125E-02.
const cantileverReport = `1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     4
0                                                                                                      SUBCASE 1

                                             D I S P L A C E M E N T   V E C T O R

      POINT ID.   TYPE          T1             T2             T3             R1             R2             R3
             1      G      0.0            0.0            0.0            0.0            0.0            0.0
             6      G      0.0            0.0           -9.765625E-03   0.0            4.687500E-03   0.0
            11      G      0.0            0.0           -3.125000E-02   0.0            6.250000E-03   0.0
0
1    CANTILEVER BEAM, TIP LOAD                                    JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     5

      * * * END OF JOB * * *
`

const modalReport = `1    SIMPLY SUPPORTED BEAM, MODAL                                 JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     3

                                              R E A L   E I G E N V A L U E S
         MODE    EXTRACTION      EIGENVALUE            RADIANS             CYCLES            GENERALIZED         GENERALIZED
          NO.       ORDER                                                                       MASS              STIFFNESS
             1         1        9.869604E+00        3.141593E+00        5.000000E-01        1.000000E+00        9.869604E+00
             2         2        1.579137E+02        1.256637E+01        2.000000E+00        1.000000E+00        1.579137E+02
             3         3        7.995484E+02        2.827433E+01        4.500000E+00        1.000000E+00        7.995484E+02
1    SIMPLY SUPPORTED BEAM, MODAL                                 JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     4

      * * * END OF JOB * * *
`

const fatalReport = `1    BROKEN DECK                                                  JANUARY  12, 1995  NASTRAN  1/12/95   PAGE     1
 *** USER FATAL MESSAGE 316, ILLEGAL DATA ON BULK DATA CARD GRID
`

// Deck fixtures. The fake solvers key off the SOL card.
const (
	cantileverDeck = "ID CANTILEVER,BEAM\nAPP DISPLACEMENT\nSOL 1,0\nCEND\n"
	modalDeck      = "ID SIMPLE,MODAL\nAPP DISPLACEMENT\nSOL 3,0\nCEND\n"
	fatalDeck      = "ID BROKEN,DECK\nFATAL\nCEND\n"
	hangDeck       = "ID SLOW,MODEL\nHANG\nCEND\n"
)

func reportFor(deck string) (text string, rc int) {
	switch {
	case strings.Contains(deck, "HANG"):
		time.Sleep(30 * time.Second)
		return "", 0
	case strings.Contains(deck, "FATAL"):
		return fatalReport, 3
	case strings.Contains(deck, "SOL 3"):
		return modalReport, 0
	default:
		return cantileverReport, 0
	}
}

func fakeSolver(inputPath, outputPath string) int {
	deck, err := os.ReadFile(inputPath)
	if err != nil {
		return 12
	}
	text, rc := reportFor(string(deck))
	_ = os.WriteFile(outputPath, []byte(text), 0644)
	return rc
}

func TestMain(m *testing.M) {
	engine.Register(fakeSolver)
	engine.MaybeRunChild()
	os.Exit(m.Run())
}

// writeEngineScript creates the subprocess stand-in emitting the same
// canned reports as the in-process fake.
func writeEngineScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	cant := write("cantilever.f06", cantileverReport)
	modal := write("modal.f06", modalReport)
	fatal := write("fatal.f06", fatalReport)

	script := fmt.Sprintf(`#!/bin/sh
deck=$(cat)
case "$deck" in
  *HANG*)    sleep 30 ;;
  *FATAL*)   cat %q; exit 3 ;;
  *"SOL 3"*) cat %q ;;
  *)         cat %q ;;
esac
`, fatal, modal, cant)

	exe := filepath.Join(dir, "nastrn")
	if err := os.WriteFile(exe, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return exe
}
