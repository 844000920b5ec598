package report

import (
	"regexp"
	"strconv"
	"strings"
)

// Section headers for the element categories this decoder models.
// Categories it does not model are silently skipped: the report may
// carry tables for element families newer than the decoder.
const (
	rodHeader   = "S T R E S S E S   I N   R O D"
	shearHeader = "S T R E S S E S   I N   S H E A R   P A N E L S"
)

var membraneHeader = regexp.MustCompile(`S T R E S S E S   I N   (Q U A D|T R I A N G)`)

// Stresses extracts every recognized stress table from the report,
// all categories, in report order per category.
func Stresses(text string) []StressTable {
	var tables []StressTable
	tables = append(tables, RodStresses(text)...)
	tables = append(tables, ShearStresses(text)...)
	tables = append(tables, MembraneStresses(text)...)
	return tables
}

// RodStresses extracts rod element stress tables: axial plus torsional
// stress per element.
func RodStresses(text string) []StressTable {
	lines := strings.Split(text, "\n")
	tracker := newSubcaseTracker()

	var tables []StressTable
	for i := 0; i < len(lines); i++ {
		tracker.observe(lines[i])
		if !strings.Contains(lines[i], rodHeader) {
			continue
		}
		subcase := tracker.current
		i = skipToColumnHeader(lines, i+1, tracker)

		var rows []StressRow
		for ; i < len(lines); i++ {
			line := lines[i]
			if isPageBreak(line) || isDoubleSpace(line) {
				break
			}
			stripped := strings.TrimSpace(line)
			if stripped == "" {
				continue
			}
			// Layout: EID AXIAL MARGIN TORSION [MARGIN], possibly two
			// elements per line.
			parts := strings.Fields(stripped)
			if len(parts) < 4 {
				break
			}
			eid, err := strconv.Atoi(parts[0])
			if err != nil {
				break
			}
			axial, err1 := strconv.ParseFloat(parts[1], 64)
			torsion, err2 := strconv.ParseFloat(parts[3], 64)
			if err1 != nil || err2 != nil {
				break
			}
			rows = append(rows, StressRow{
				ElementID: eid,
				Components: map[string]float64{
					ComponentAxial:   axial,
					ComponentTorsion: torsion,
				},
			})
		}
		if len(rows) > 0 {
			tables = appendStress(tables, subcase, CategoryRod, rows)
		}
	}
	return tables
}

// ShearStresses extracts shear panel stress tables: maximum plus
// average shear per element. Panels print two elements per data line.
func ShearStresses(text string) []StressTable {
	lines := strings.Split(text, "\n")
	tracker := newSubcaseTracker()

	var tables []StressTable
	for i := 0; i < len(lines); i++ {
		tracker.observe(lines[i])
		if !strings.Contains(lines[i], shearHeader) {
			continue
		}
		subcase := tracker.current
		i = skipToColumnHeader(lines, i+1, tracker)

		var rows []StressRow
		for ; i < len(lines); i++ {
			line := lines[i]
			if isPageBreak(line) || isDoubleSpace(line) {
				break
			}
			stripped := strings.TrimSpace(line)
			if stripped == "" {
				continue
			}
			parsed := parseShearLine(stripped)
			if len(parsed) == 0 {
				break
			}
			rows = append(rows, parsed...)
		}
		if len(rows) > 0 {
			tables = appendStress(tables, subcase, CategoryShearPanel, rows)
		}
	}
	return tables
}

// parseShearLine walks EID MAX AVG [MARGIN] groups, one or two per line.
func parseShearLine(stripped string) []StressRow {
	parts := strings.Fields(stripped)
	var rows []StressRow
	j := 0
	for j+3 <= len(parts) {
		eid, err := strconv.Atoi(parts[j])
		if err != nil {
			break
		}
		maxShear, err1 := strconv.ParseFloat(parts[j+1], 64)
		avgShear, err2 := strconv.ParseFloat(parts[j+2], 64)
		if err1 != nil || err2 != nil {
			break
		}
		rows = append(rows, StressRow{
			ElementID: eid,
			Components: map[string]float64{
				ComponentMaxShear: maxShear,
				ComponentAvgShear: avgShear,
			},
		})
		j += 3
		// A safety margin may follow before the next element id.
		if j < len(parts) {
			if _, err := strconv.Atoi(parts[j]); err != nil {
				j++
			}
		}
	}
	return rows
}

// MembraneStresses extracts quadrilateral and triangular membrane
// stress tables: in-plane components plus derived principal stresses.
func MembraneStresses(text string) []StressTable {
	lines := strings.Split(text, "\n")
	tracker := newSubcaseTracker()

	var tables []StressTable
	for i := 0; i < len(lines); i++ {
		tracker.observe(lines[i])
		m := membraneHeader.FindString(lines[i])
		if m == "" {
			continue
		}
		category := CategoryQuadMembrane
		if strings.Contains(m, "T R I A N G") {
			category = CategoryTriMembrane
		}
		subcase := tracker.current
		i = skipToColumnHeader(lines, i+1, tracker)

		var rows []StressRow
		for ; i < len(lines); i++ {
			line := lines[i]
			if isPageBreak(line) || isDoubleSpace(line) {
				break
			}
			stripped := strings.TrimSpace(line)
			if stripped == "" {
				continue
			}
			// Layout: EID NX NY SXY ANGLE MAJOR MINOR MAX-SHEAR.
			parts := strings.Fields(stripped)
			if len(parts) < 8 {
				break
			}
			eid, err := strconv.Atoi(parts[0])
			if err != nil {
				break
			}
			var vals [7]float64
			bad := false
			for k := 0; k < 7; k++ {
				v, err := strconv.ParseFloat(parts[k+1], 64)
				if err != nil {
					bad = true
					break
				}
				vals[k] = v
			}
			if bad {
				break
			}
			rows = append(rows, StressRow{
				ElementID: eid,
				Components: map[string]float64{
					ComponentNormalX:  vals[0],
					ComponentNormalY:  vals[1],
					ComponentShearXY:  vals[2],
					ComponentMajor:    vals[4],
					ComponentMinor:    vals[5],
					ComponentMaxShear: vals[6],
				},
			})
		}
		if len(rows) > 0 {
			tables = appendStress(tables, subcase, category, rows)
		}
	}
	return tables
}

// skipToColumnHeader advances past the "ELEMENT" column header and the
// "ID." sub-header line the Engine prints beneath it.
func skipToColumnHeader(lines []string, i int, tracker *subcaseTracker) int {
	for i < len(lines) && !strings.Contains(lines[i], "ELEMENT") {
		tracker.observe(lines[i])
		i++
	}
	i++
	if i < len(lines) && strings.Contains(lines[i], "ID.") {
		i++
	}
	return i
}

// appendStress merges rows into an existing (subcase, category) table
// when pagination split one table across pages.
func appendStress(tables []StressTable, subcase int, category ElementCategory, rows []StressRow) []StressTable {
	for idx := range tables {
		if tables[idx].Subcase == subcase && tables[idx].Category == category {
			tables[idx].Rows = append(tables[idx].Rows, rows...)
			return tables
		}
	}
	return append(tables, StressTable{Subcase: subcase, Category: category, Rows: rows})
}
