package export

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nastrun/internal/report"
)

func sampleResults() *report.Results {
	return &report.Results{
		Completed: true,
		Displacements: []report.DisplacementTable{
			{Subcase: 1, Rows: []report.Displacement{
				{GridID: 1},
				{GridID: 11, Translation: [3]float64{0, 0, -3.125e-02}, Rotation: [3]float64{0, 3.2e-03, 0}},
			}},
		},
		Stresses: []report.StressTable{
			{Subcase: 1, Category: report.CategoryRod, Rows: []report.StressRow{
				{ElementID: 101, Components: map[string]float64{
					report.ComponentAxial:   9.375e+03,
					report.ComponentTorsion: 0,
				}},
			}},
		},
		Eigen: &report.EigenTable{Modes: []report.Mode{
			{Index: 1, Eigenvalue: 3.9478e+01, Frequency: 1.0, GeneralizedMass: 1, GeneralizedStiffness: 3.9478e+01, Available: true},
			{Index: 2, Eigenvalue: -1.0, Frequency: -5.0e-01, Available: false},
		}},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteXLSX(path, sampleResults()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Displacements 1")
	assert.Contains(t, sheets, "Stresses 1 CROD")
	assert.Contains(t, sheets, "Eigenvalues")
	assert.NotContains(t, sheets, "Sheet1")

	// Tip deflection lands in the T3 column of the second data row.
	cell, err := f.GetCellValue("Displacements 1", "D3")
	require.NoError(t, err)
	tip, err := strconv.ParseFloat(cell, 64)
	require.NoError(t, err)
	assert.InDelta(t, -3.125e-02, tip, 1e-9)

	// Stress columns are sorted component names after the element id.
	head, err := f.GetRows("Stresses 1 CROD")
	require.NoError(t, err)
	require.NotEmpty(t, head)
	assert.Equal(t, []string{"Element", "axial", "torsion"}, head[0])

	modes, err := f.GetRows("Eigenvalues")
	require.NoError(t, err)
	require.Len(t, modes, 3)
	assert.Equal(t, "FALSE", modes[2][5])
}

func TestWriteXLSXEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, &report.Results{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	// Nothing to export leaves the default sheet in place.
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}
