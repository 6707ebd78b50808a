package lattice

import "io"

// NodeID is a zero-based index identifying a lattice site.
type NodeID int32

// NilNode denotes an empty neighbor slot (an excised hole edge or a terminal boundary).
const NilNode NodeID = -1

// Direction is one of the six hexagonal compass directions, or Back.
//
// Back is not a geometric direction: it only appears in molecule walks, where it returns the walk cursor
// to its previous position.  Back is never a valid neighbor slot.
type Direction int8

const (
	Back Direction = iota
	Right
	DownRight
	DownLeft
	Left
	UpLeft
	UpRight
)

// NumDirections is the number of neighbor slots per Node.
const NumDirections = 6

// Directions lists the six storage directions in rotation order.
var Directions = [NumDirections]Direction{Right, DownRight, DownLeft, Left, UpLeft, UpRight}

// Graph is the read-only neighbor lookup a molecule walk needs.
type Graph interface {

	// Neighbor returns the site adjacent to id in direction d, or NilNode.
	Neighbor(id NodeID, d Direction) NodeID

	// NumNodes returns the number of sites.
	NumNodes() int
}

// Vec3 is one coordinate replica of a site.
type Vec3 [3]float64

// Source supplies the two line-oriented lattice descriptions.
type Source struct {
	Neighbors io.Reader // "<nodeId> <directionCode 1..6> <neighborId>" per directed edge
	Coords    io.Reader // "<nodeId>\t<x>\t<y>\t<z>", NumReplicas lines per node
}

// Opts specifies how a Crystal is loaded.
type Opts struct {
	Name         string // lattice name
	MoleculeSize int    // sites per molecule; a non-multiple node count excises node 0
	Holes        int    // requested hole count
}

// Track is one straight scan line through the lattice following a single direction.
type Track struct {
	Dir    Direction
	Nodes  []NodeID
	Closed bool // true if the line wraps back onto its first node
}
