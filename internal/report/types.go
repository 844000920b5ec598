// Package report decodes the Engine's free-form printed report into
// typed numeric tables. The report is treated as an external,
// semi-stable wire format: extraction is header/label-driven rather
// than offset-driven, because page banners and pagination breaks
// interleave with data blocks throughout, and every extractor degrades
// by omission when it meets structure it does not recognize.
//
// All functions are pure over the report text and operable without a
// live run, which supports offline re-parsing of archived reports.
package report

// ElementCategory names an element family whose stress table layout
// the decoder recognizes.
type ElementCategory string

const (
	// CategoryRod is the rod element family: axial plus torsional stress.
	CategoryRod ElementCategory = "CROD"

	// CategoryShearPanel is the shear panel family: maximum plus
	// average shear.
	CategoryShearPanel ElementCategory = "CSHEAR"

	// CategoryQuadMembrane and CategoryTriMembrane are the membrane
	// families: normal-x, normal-y, shear-xy plus derived principal
	// stresses and maximum shear.
	CategoryQuadMembrane ElementCategory = "CQDMEM"
	CategoryTriMembrane  ElementCategory = "CTRMEM"
)

// Stress component names used in StressRow.Components.
const (
	ComponentAxial    = "axial"
	ComponentTorsion  = "torsion"
	ComponentMaxShear = "max_shear"
	ComponentAvgShear = "avg_shear"
	ComponentNormalX  = "normal_x"
	ComponentNormalY  = "normal_y"
	ComponentShearXY  = "shear_xy"
	ComponentMajor    = "major"
	ComponentMinor    = "minor"
)

// Displacement is one grid point's six components of motion.
type Displacement struct {
	GridID      int        `json:"grid_id"`
	Translation [3]float64 `json:"translation"`
	Rotation    [3]float64 `json:"rotation"`
}

// DisplacementTable holds one subcase's displacement vector. Tables
// appear in report order, which is authoritative: rigid-format output
// order is not guaranteed monotonic in subcase number.
type DisplacementTable struct {
	Subcase int            `json:"subcase"`
	Rows    []Displacement `json:"rows"`
}

// StressRow is one element's stress components.
type StressRow struct {
	ElementID  int                `json:"element_id"`
	Components map[string]float64 `json:"components"`
}

// StressTable holds one (subcase, element category) group of stresses.
type StressTable struct {
	Subcase  int             `json:"subcase"`
	Category ElementCategory `json:"category"`
	Rows     []StressRow     `json:"rows"`
}

// Mode is one entry of the modal summary. A malformed entry (negative
// or NaN frequency) is kept with Available false instead of aborting
// extraction of the remaining modes.
type Mode struct {
	Index                int     `json:"index"`
	Eigenvalue           float64 `json:"eigenvalue"`
	Frequency            float64 `json:"frequency"`
	GeneralizedMass      float64 `json:"generalized_mass"`
	GeneralizedStiffness float64 `json:"generalized_stiffness"`
	Available            bool    `json:"available"`
}

// EigenTable is the modal summary block; a report has at most one.
type EigenTable struct {
	Modes []Mode `json:"modes"`
}

// Results aggregates everything the decoder extracts from one report.
type Results struct {
	Completed     bool                `json:"completed"`
	Displacements []DisplacementTable `json:"displacements"`
	Stresses      []StressTable       `json:"stresses"`
	Eigen         *EigenTable         `json:"eigen,omitempty"`
}

// Decode runs every extractor over the report text.
func Decode(text string) *Results {
	return &Results{
		Completed:     IsCompleted(text),
		Displacements: Displacements(text),
		Stresses:      Stresses(text),
		Eigen:         EigenSolution(text),
	}
}
