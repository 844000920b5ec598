package report

import (
	"regexp"
	"strings"
)

// Fortran carriage control: column 1 of every printed line is a
// control character, not data. '1' starts a new page, '0' double
// spaces, ' ' single spaces, '+' overprints. Page breaks are detected
// on the original, unstripped line.

func isPageBreak(line string) bool {
	return len(line) > 0 && line[0] == '1'
}

func isDoubleSpace(line string) bool {
	return len(line) > 0 && line[0] == '0'
}

// Terminal markers. A report is complete when a normal-completion
// marker is present and no fatal marker is. Absence of both (for
// example truncated output after a timeout) is simply not complete;
// it is never an error. Exit status plays no part here: the Engine
// can exit zero with a fatal analytical condition in the report.
var (
	normalMarkers = []string{
		"END OF JOB",
	}
	fatalMarkers = []string{
		"FATAL MESSAGE",
		"FATAL ERROR",
		"JOB TERMINATED DUE TO",
	}
)

// IsCompleted reports whether the report text signals a normal
// terminal state.
func IsCompleted(text string) bool {
	fatal := false
	for _, m := range fatalMarkers {
		if strings.Contains(text, m) {
			fatal = true
			break
		}
	}
	if fatal {
		return false
	}
	for _, m := range normalMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// subcasePattern matches the subcase label printed in page title
// blocks. Data rows never carry the word, so any match updates the
// current attribution.
var subcasePattern = regexp.MustCompile(`\bSUBCASE\s+(\d+)\b`)

// subcaseTracker attributes table blocks to the subcase most recently
// named in a page header. Reports that never name one (single-case
// rigid formats) default to subcase 1.
type subcaseTracker struct {
	current int
}

func newSubcaseTracker() *subcaseTracker {
	return &subcaseTracker{current: 1}
}

func (s *subcaseTracker) observe(line string) {
	if m := subcasePattern.FindStringSubmatch(line); m != nil {
		n := 0
		for _, c := range m[1] {
			n = n*10 + int(c-'0')
		}
		if n > 0 {
			s.current = n
		}
	}
}
