package molecule

import (
	"github.com/2x3systems/hexpack/lattice"
)

// Orientation classifies a shape by how it relates to its mirror image.
type Orientation uint8

const (
	Left      Orientation = iota + 1 // chiral, left-handed
	Right                            // chiral, right-handed (mirror of Left)
	AChiral                          // its own mirror image; six distinct rotations
	Symmetric                        // its own mirror image; three distinct rotations
	Circular                         // single-site hole placeholder
)

// Molecule is an immutable shape: an ordered walk of steps from an anchor, with a bead ID per walk position.
//
// Rotate and Mirror return new values.  Two molecules are Equal when orientation and steps agree.
type Molecule struct {
	Name        string
	orientation Orientation
	rotation    int8
	mirrored    bool
	steps       []lattice.Direction
	beads       []int
}

// Placement is one molecule variant anchored at a site.
// Root is 0 for the first root molecule of a run and 1 for the second in a dual-root run.
type Placement struct {
	Anchor   lattice.NodeID
	Molecule Molecule
	Root     int
}

// BondKey is one lattice edge joining two occupied sites, normalized so Lo <= Hi and Dir points from Lo.
type BondKey struct {
	Lo  lattice.NodeID
	Dir lattice.Direction
	Hi  lattice.NodeID
}
