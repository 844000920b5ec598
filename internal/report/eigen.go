package report

import (
	"math"
	"strconv"
	"strings"
)

const eigenHeader = "R E A L   E I G E N V A L U E S"

// EigenSolution extracts the modal summary block, or nil when the
// report has none. Only the first block is decoded; a report carries
// at most one. Entries with a negative or NaN frequency come from
// malformed rows and are downgraded to unavailable rather than
// aborting the remaining modes.
func EigenSolution(text string) *EigenTable {
	lines := strings.Split(text, "\n")

	i := 0
	for ; i < len(lines); i++ {
		if strings.Contains(lines[i], eigenHeader) {
			break
		}
	}
	if i >= len(lines) {
		return nil
	}

	// Skip to the MODE column header, then past it and its "NO."
	// sub-header.
	i++
	for i < len(lines) && !strings.Contains(lines[i], "MODE") {
		i++
	}
	if i >= len(lines) {
		return nil
	}
	i++
	if i < len(lines) && strings.Contains(lines[i], "NO.") {
		i++
	}

	var modes []Mode
	for ; i < len(lines); i++ {
		line := lines[i]
		if isPageBreak(line) {
			break
		}
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		// Info messages get interleaved with the table.
		if strings.HasPrefix(stripped, "*") || strings.HasPrefix(stripped, "+") ||
			strings.Contains(stripped, "MESSAGE") {
			continue
		}
		// Layout: MODE ORDER EIGENVALUE RADIANS CYCLES GEN-MASS GEN-STIFF.
		parts := strings.Fields(stripped)
		if len(parts) < 7 {
			continue
		}
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		eigenvalue, err1 := strconv.ParseFloat(parts[2], 64)
		frequency, err2 := strconv.ParseFloat(parts[4], 64)
		genMass, err3 := strconv.ParseFloat(parts[5], 64)
		genStiff, err4 := strconv.ParseFloat(parts[6], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		mode := Mode{
			Index:                idx,
			Eigenvalue:           eigenvalue,
			Frequency:            frequency,
			GeneralizedMass:      genMass,
			GeneralizedStiffness: genStiff,
			Available:            true,
		}
		// Frequency must be non-negative and finite; anything else is
		// a malformed block entry.
		if frequency < 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
			mode.Available = false
		}
		modes = append(modes, mode)
	}

	if len(modes) == 0 {
		return nil
	}
	return &EigenTable{Modes: modes}
}
