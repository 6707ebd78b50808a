package lattice

import (
	"os"
	"path/filepath"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// File extensions of the lattice descriptions inside a lattice directory.
const (
	NeighborsExt = ".nbr"
	CoordsExt    = ".xyz"
	SymmetryExt  = ".sym"
)

// Crystal is a loaded lattice: a node arena, coordinate replicas and the scan-line tracks.
type Crystal struct {
	Name     string
	nodes    []Node
	replicas [][hexpack.NumReplicas]Vec3
	tracks   []Track
	hole     NodeID
	holes    int
}

// Open loads the lattice named opts.Name from dir.
func Open(dir string, opts Opts) (*Crystal, error) {
	base := filepath.Join(dir, opts.Name)

	nbrFile, err := os.Open(base + NeighborsExt)
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrMalformedInput, err.Error())
	}
	defer nbrFile.Close()

	xyzFile, err := os.Open(base + CoordsExt)
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrMalformedInput, err.Error())
	}
	defer xyzFile.Close()

	return Load(Source{
		Neighbors: nbrFile,
		Coords:    xyzFile,
	}, opts)
}

// Load parses both lattice descriptions, checks reciprocity and excises node 0 as a hole if
// the node count is not a multiple of opts.MoleculeSize.
func Load(src Source, opts Opts) (*Crystal, error) {
	nodes, err := parseNeighbors(src.Neighbors)
	if err != nil {
		return nil, errors.WithMessagef(err, "lattice %q", opts.Name)
	}
	if err = checkReciprocity(nodes); err != nil {
		return nil, errors.WithMessagef(err, "lattice %q", opts.Name)
	}
	replicas, err := parseCoords(src.Coords, len(nodes))
	if err != nil {
		return nil, errors.WithMessagef(err, "lattice %q", opts.Name)
	}

	X := &Crystal{
		Name:     opts.Name,
		nodes:    nodes,
		replicas: replicas,
		hole:     NilNode,
		holes:    opts.Holes,
	}
	X.tracks = computeTracks(nodes)

	if opts.MoleculeSize > 0 && len(nodes)%opts.MoleculeSize != 0 {
		X.excise(0)
		X.holes--
	}

	klog.V(2).Infof("lattice %q: %d nodes, %d tracks, hole=%d, extra holes=%d", X.Name, len(nodes), len(X.tracks), X.hole, X.ExtraHoles())
	return X, nil
}

func checkReciprocity(nodes []Node) error {
	for i := range nodes {
		n := &nodes[i]
		for _, d := range Directions {
			to := n.Get(d)
			if to == NilNode {
				if !n.IsTerminal(d) {
					return errors.Wrapf(hexpack.ErrInvalidTopology, "node %d has no %v edge", n.ID, d)
				}
				continue
			}
			if back := nodes[to].Get(d.Opposite()); back != n.ID {
				return errors.Wrapf(hexpack.ErrInvalidTopology, "node %d -%v-> %d, but %d -%v-> %d", n.ID, d, to, to, d.Opposite(), back)
			}
		}
	}
	return nil
}

// excise nulls every edge of the given node and every neighbor edge pointing back at it.
// Neighbors are not reconnected to each other.
func (X *Crystal) excise(id NodeID) {
	n := &X.nodes[id]
	for _, d := range Directions {
		to := n.Get(d)
		if to == NilNode {
			continue
		}
		n.Set(d, NilNode)
		nbr := &X.nodes[to]
		if nbr.Get(d.Opposite()) == id {
			nbr.Set(d.Opposite(), NilNode)
		}
	}
	X.hole = id
}

// NumNodes returns the number of sites, including the excised hole.
func (X *Crystal) NumNodes() int {
	return len(X.nodes)
}

// Neighbor returns the site adjacent to id in direction d, or NilNode.
func (X *Crystal) Neighbor(id NodeID, d Direction) NodeID {
	if id < 0 || int(id) >= len(X.nodes) {
		return NilNode
	}
	return X.nodes[id].Get(d)
}

// Node returns a copy of the given site.
func (X *Crystal) Node(id NodeID) Node {
	return X.nodes[id]
}

// Replicas returns the nine periodic coordinate replicas of the given site.
func (X *Crystal) Replicas(id NodeID) [hexpack.NumReplicas]Vec3 {
	return X.replicas[id]
}

// Hole returns the excised node, or NilNode if the lattice was loaded intact.
func (X *Crystal) Hole() NodeID {
	return X.hole
}

// IsHole returns true if id is the excised node.
func (X *Crystal) IsHole(id NodeID) bool {
	return X.hole != NilNode && id == X.hole
}

// HoleCount returns the requested hole count after excision adjustment.  This may be negative.
func (X *Crystal) HoleCount() int {
	return X.holes
}

// ExtraHoles returns how many hole slots the exact-cover matrix must carry beyond the excised node.
func (X *Crystal) ExtraHoles() int {
	if X.holes < 0 {
		return 0
	}
	return X.holes
}

// Tracks returns the scan lines captured at load, before any excision.
func (X *Crystal) Tracks() []Track {
	return X.tracks
}
