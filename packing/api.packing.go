package packing

import (
	"time"

	"github.com/2x3systems/hexpack/canon"
	"github.com/2x3systems/hexpack/cover"
	"github.com/2x3systems/hexpack/exactcover"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/2x3systems/hexpack/symmetry"
)

// StopReason says why an enumeration ended before the solver ran out of solutions.
type StopReason string

const (
	Completed  StopReason = ""
	Deadline   StopReason = "deadline"
	MaxResults StopReason = "max-results"
	Canceled   StopReason = "canceled"
)

// Opts specifies how a lattice is enumerated.
type Opts struct {
	UseHeuristic  bool            // choose the column with the fewest rows at each level
	MaxResults    int             // stop once this many canonical results are found; 0 means no limit
	Deadline      time.Time       // stop once this time passes; zero means no deadline
	MaxExpansions int             // per-solution ambiguity cap; 0 means hexpack.DefaultMaxExpansions
	Symmetry      *symmetry.Table // if set, enumerate symmetric tilings only
}

// Run is the outcome of tiling one crystal with one or two root molecules.
type Run struct {
	Crystal   *lattice.Crystal
	Roots     []molecule.Molecule
	Matrix    *cover.Matrix
	Set       *canon.Set
	Solutions int64 // exact covers reported by the solver
	Stats     exactcover.Stats
	Stopped   StopReason
	Elapsed   time.Duration
}
