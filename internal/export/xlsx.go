// Package export renders decoded results into spreadsheet workbooks
// for post-processing outside the toolchain.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"nastrun/internal/logging"
	"nastrun/internal/report"
)

// WriteXLSX writes one workbook with a sheet per result table: one
// "Displacements <subcase>" sheet per displacement table, one
// "Stresses <subcase> <category>" sheet per stress table, and an
// "Eigenvalues" sheet when a modal solution is present. Sheet order
// follows report order.
func WriteXLSX(path string, results *report.Results) error {
	f := excelize.NewFile()
	defer f.Close()

	wrote := false
	for _, table := range results.Displacements {
		if err := displacementSheet(f, table); err != nil {
			return err
		}
		wrote = true
	}
	for _, table := range results.Stresses {
		if err := stressSheet(f, table); err != nil {
			return err
		}
		wrote = true
	}
	if results.Eigen != nil {
		if err := eigenSheet(f, results.Eigen); err != nil {
			return err
		}
		wrote = true
	}

	if wrote {
		// Drop the default sheet so the workbook opens on real data.
		f.DeleteSheet("Sheet1")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	logging.Run("Exported results workbook to %s", path)
	return nil
}

func displacementSheet(f *excelize.File, table report.DisplacementTable) error {
	name := fmt.Sprintf("Displacements %d", table.Subcase)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	header := []interface{}{"Grid", "T1", "T2", "T3", "R1", "R2", "R3"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.GridID,
			row.Translation[0], row.Translation[1], row.Translation[2],
			row.Rotation[0], row.Rotation[1], row.Rotation[2],
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func stressSheet(f *excelize.File, table report.StressTable) error {
	name := fmt.Sprintf("Stresses %d %s", table.Subcase, table.Category)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	components := componentColumns(table)
	header := []interface{}{"Element"}
	for _, c := range components {
		header = append(header, c)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{row.ElementID}
		for _, c := range components {
			values = append(values, row.Components[c])
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// componentColumns returns a stable column order for the table's
// stress components.
func componentColumns(table report.StressTable) []string {
	seen := map[string]bool{}
	var names []string
	for _, row := range table.Rows {
		for c := range row.Components {
			if !seen[c] {
				seen[c] = true
				names = append(names, c)
			}
		}
	}
	sort.Strings(names)
	return names
}

func eigenSheet(f *excelize.File, table *report.EigenTable) error {
	const name = "Eigenvalues"
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	header := []interface{}{"Mode", "Eigenvalue", "Frequency", "Generalized Mass", "Generalized Stiffness", "Available"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, mode := range table.Modes {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			mode.Index, mode.Eigenvalue, mode.Frequency,
			mode.GeneralizedMass, mode.GeneralizedStiffness, mode.Available,
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
