package cover

import (
	"github.com/2x3systems/hexpack/exactcover"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/2x3systems/hexpack/symmetry"
)

// NoHole is the HoleSlot of a molecule row.
const NoHole = -1

// Choice is one concrete way of covering a Row: a single placement, or in symmetry mode every
// placement forced together by the group.
type Choice []molecule.Placement

// Row is one exact-cover row.  Every (anchor, variant) whose footprint produces the same Key is kept as a
// separate Choice, so one solver row can stand for several concrete placements.
type Row struct {
	Key      string           // sorted occupied IDs joined by ',' or "h{slot}-{id}" for holes
	Occupied []lattice.NodeID // sorted
	HoleSlot int              // NoHole, 0 for the excised and required holes, 1..k for extra holes
	Choices  []Choice
}

// IsHole returns true for hole rows.
func (row *Row) IsHole() bool {
	return row.HoleSlot != NoHole
}

// Opts specifies how a Matrix is built.
type Opts struct {
	Roots    []molecule.Molecule // one root, or two of equal size
	Symmetry *symmetry.Table     // if set, rows are built from orbit representatives only
}

// Matrix is the exact-cover formulation of tiling one crystal with the given roots.
type Matrix struct {
	Crystal   *lattice.Crystal
	Roots     []molecule.Molecule
	Rows      []*Row // in key order; index is the solver row ID
	Columns   []string
	Bits      []exactcover.Bits
	HoleSlots int
	dlx       *exactcover.Matrix
}
