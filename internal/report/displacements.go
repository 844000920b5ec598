package report

import (
	"strconv"
	"strings"
)

const displacementHeader = "D I S P L A C E M E N T   V E C T O R"

// Displacements extracts every displacement table from the report.
// Blocks split across page breaks are merged back into their subcase's
// table; tables are returned in report order.
func Displacements(text string) []DisplacementTable {
	lines := strings.Split(text, "\n")
	tracker := newSubcaseTracker()

	var tables []DisplacementTable
	bySubcase := make(map[int]int) // subcase -> index in tables

	i := 0
	for i < len(lines) {
		tracker.observe(lines[i])
		if !strings.Contains(lines[i], displacementHeader) {
			i++
			continue
		}
		subcase := tracker.current

		// Skip forward to the column header, then past it.
		i++
		for i < len(lines) && !strings.Contains(lines[i], "POINT ID.") {
			tracker.observe(lines[i])
			i++
		}
		i++

		var rows []Displacement
		for i < len(lines) {
			line := lines[i]
			if isPageBreak(line) || isDoubleSpace(line) {
				break
			}
			stripped := strings.TrimSpace(line)
			if stripped == "" {
				i++
				continue
			}
			row, ok := parseDisplacementRow(stripped)
			if !ok {
				break
			}
			rows = append(rows, row)
			i++
		}

		if len(rows) == 0 {
			continue
		}
		if idx, seen := bySubcase[subcase]; seen {
			tables[idx].Rows = append(tables[idx].Rows, rows...)
		} else {
			bySubcase[subcase] = len(tables)
			tables = append(tables, DisplacementTable{Subcase: subcase, Rows: rows})
		}
	}
	return tables
}

// parseDisplacementRow parses one data row: grid id, point type (G or
// S), then three translations and three rotations.
func parseDisplacementRow(stripped string) (Displacement, bool) {
	parts := strings.Fields(stripped)
	if len(parts) < 8 {
		return Displacement{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Displacement{}, false
	}
	var vals [6]float64
	for k := 0; k < 6; k++ {
		v, err := strconv.ParseFloat(parts[k+2], 64)
		if err != nil {
			return Displacement{}, false
		}
		vals[k] = v
	}
	return Displacement{
		GridID:      id,
		Translation: [3]float64{vals[0], vals[1], vals[2]},
		Rotation:    [3]float64{vals[3], vals[4], vals[5]},
	}, true
}
