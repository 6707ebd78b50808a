package molecule

import (
	"sort"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/pkg/errors"
)

// Path walks m from anchor and returns the site of every walk position, anchor first.
// Back returns the cursor to the previous site without occupying a new one.
// ok is false if a step leaves the lattice.
func (m Molecule) Path(g lattice.Graph, anchor lattice.NodeID) (path []lattice.NodeID, ok bool) {
	if anchor < 0 || int(anchor) >= g.NumNodes() {
		return nil, false
	}

	path = make([]lattice.NodeID, 1, len(m.beads))
	path[0] = anchor

	cur, prev := anchor, lattice.NilNode
	for _, d := range m.steps {
		if d == lattice.Back {
			if prev == lattice.NilNode {
				return nil, false
			}
			cur, prev = prev, cur
			continue
		}
		next := g.Neighbor(cur, d)
		if next == lattice.NilNode {
			return nil, false
		}
		prev, cur = cur, next
		path = append(path, cur)
	}
	return path, true
}

// UsedNodeIDs returns the sorted sites m occupies when anchored at anchor.
// ok is false if the walk leaves the lattice or wraps onto itself.
func (m Molecule) UsedNodeIDs(g lattice.Graph, anchor lattice.NodeID) ([]lattice.NodeID, bool) {
	path, ok := m.Path(g, anchor)
	if !ok {
		return nil, false
	}
	used := append([]lattice.NodeID(nil), path...)
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })
	for i := 1; i < len(used); i++ {
		if used[i] == used[i-1] {
			return nil, false
		}
	}
	return used, true
}

// BeadNode returns the site holding the given bead, or NilNode if m does not fit at anchor.
func (m Molecule) BeadNode(g lattice.Graph, anchor lattice.NodeID, bead int) (lattice.NodeID, error) {
	pos := -1
	for i, b := range m.beads {
		if b == bead {
			pos = i
			break
		}
	}
	if pos < 0 {
		return lattice.NilNode, errors.Wrapf(hexpack.ErrBadBeadID, "%q has no bead %d", m.Name, bead)
	}
	if _, ok := m.UsedNodeIDs(g, anchor); !ok {
		return lattice.NilNode, nil
	}
	path, _ := m.Path(g, anchor)
	return path[pos], nil
}

// BondKeys returns every lattice edge joining two sites of one placed instance, sorted.
// Returns nil if m does not fit at anchor.
func (m Molecule) BondKeys(g lattice.Graph, anchor lattice.NodeID) []BondKey {
	used, ok := m.UsedNodeIDs(g, anchor)
	if !ok {
		return nil
	}
	occupied := make(map[lattice.NodeID]struct{}, len(used))
	for _, id := range used {
		occupied[id] = struct{}{}
	}

	keys := make(map[BondKey]struct{})
	for _, u := range used {
		for _, d := range lattice.Directions {
			v := g.Neighbor(u, d)
			if _, in := occupied[v]; !in {
				continue
			}
			keys[NewBondKey(u, d, v)] = struct{}{}
		}
	}

	out := make([]BondKey, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// NewBondKey normalizes the edge u -d-> v.
func NewBondKey(u lattice.NodeID, d lattice.Direction, v lattice.NodeID) BondKey {
	switch {
	case u < v:
		return BondKey{u, d, v}
	case v < u:
		return BondKey{v, d.Opposite(), u}
	}
	if opp := d.Opposite(); opp < d {
		d = opp
	}
	return BondKey{u, d, v}
}

func (k BondKey) Less(other BondKey) bool {
	if k.Lo != other.Lo {
		return k.Lo < other.Lo
	}
	if k.Hi != other.Hi {
		return k.Hi < other.Hi
	}
	return k.Dir < other.Dir
}
