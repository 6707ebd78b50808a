package canon

import (
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
)

// BucketAll labels results of runs with no orientation concept.
const BucketAll = "all"

// Lattice is what canonicalization needs from a crystal.
type Lattice interface {
	lattice.Graph

	// Tracks returns every scan line of the lattice.
	Tracks() []lattice.Track
}

// Fingerprint is the structural identity of a canonical result.  Two results are the same iff their
// fingerprints are equal.
type Fingerprint struct {
	Adjacency string // adjacency counts, each a uvarint
	Tag       string // sorted, least-rotated track strings joined by TrackSep
}

// TrackSep separates track strings inside a tag.  Bead IDs never reach it.
const TrackSep = 0xFF

// Result is one canonicalized placement set.
type Result struct {
	Lattice     Lattice
	Roots       []molecule.Molecule
	Placements  []molecule.Placement
	Bucket      string
	Beads       []int // orientation-aware bead ID per site, 0 for holes
	Agnostic    []int // orientation-agnostic bead ID per site, 0 for holes
	Adjacency   []int // inter-molecule contact counts per bead pair, in AdjacencyNames order
	Vector      []int // per site: 0 empty, variant code at anchors, -1 at holes
	Fingerprint Fingerprint
}
