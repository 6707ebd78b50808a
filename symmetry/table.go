package symmetry

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Image is where a symmetry operation sends a placement: the new anchor, whether the shape
// is reflected, and its rotation.
type Image struct {
	Node     lattice.NodeID
	Mirrored bool
	Rotation int
}

type member struct {
	node     lattice.NodeID
	mirrored bool
	orients  [lattice.NumDirections]int
}

type orbit struct {
	groupID int
	members []member // members[0] is the representative
}

// Table is a parsed symmetry description: per orbit representative, the images every initial rotation
// maps to, plus the sites that must stay holes.
type Table struct {
	Name   string
	orbits map[lattice.NodeID]*orbit
	reps   []lattice.NodeID
	holes  []lattice.NodeID
}

// Open reads <dir>/<name>.sym
func Open(dir, name string) (*Table, error) {
	file, err := os.Open(filepath.Join(dir, name+lattice.SymmetryExt))
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrBadSymmetry, err.Error())
	}
	defer file.Close()
	return Read(name, file)
}

// Read parses a symmetry description.
func Read(name string, r io.Reader) (*Table, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrBadSymmetry, err.Error())
	}
	buf = append(buf, '\n')

	expr, err := sParseSymExpr.ParseBytes(name, buf)
	if err != nil {
		return nil, errors.Wrap(hexpack.ErrBadSymmetry, err.Error())
	}

	T := &Table{
		Name:   name,
		orbits: make(map[lattice.NodeID]*orbit),
	}
	byGroup := make(map[int]*orbit)

	for i, line := range expr.Lines {
		if line.Node < 0 || (line.Hole|line.Mirrored)&^1 != 0 {
			return nil, errors.Wrapf(hexpack.ErrBadSymmetry, "%s: entry %d: bad node or flag", name, i+1)
		}
		if line.Hole != 0 {
			T.holes = append(T.holes, lattice.NodeID(line.Node))
			continue
		}
		if len(line.Orients) != lattice.NumDirections {
			return nil, errors.Wrapf(hexpack.ErrBadSymmetry, "%s: entry %d: expected %d orientations, got %d", name, i+1, lattice.NumDirections, len(line.Orients))
		}

		mem := member{
			node:     lattice.NodeID(line.Node),
			mirrored: line.Mirrored != 0,
		}
		for j, o := range line.Orients {
			if o < 0 || o >= lattice.NumDirections {
				return nil, errors.Wrapf(hexpack.ErrBadSymmetry, "%s: entry %d: orientation %d", name, i+1, o)
			}
			mem.orients[j] = o
		}

		orb := byGroup[line.Group]
		if orb == nil {
			orb = &orbit{groupID: line.Group}
			byGroup[line.Group] = orb
			T.orbits[mem.node] = orb
			T.reps = append(T.reps, mem.node)
		}
		orb.members = append(orb.members, mem)
	}

	sort.Slice(T.reps, func(i, j int) bool { return T.reps[i] < T.reps[j] })
	sort.Slice(T.holes, func(i, j int) bool { return T.holes[i] < T.holes[j] })

	klog.V(2).Infof("symmetry %q: %d orbits, %d required holes", name, len(T.reps), len(T.holes))
	return T, nil
}

// Validate checks every site named by the table exists in a lattice of numNodes sites.
func (T *Table) Validate(numNodes int) error {
	check := func(id lattice.NodeID) error {
		if int(id) >= numNodes {
			return errors.Wrapf(hexpack.ErrBadSymmetry, "%s: node %d not in lattice of %d", T.Name, id, numNodes)
		}
		return nil
	}
	for _, id := range T.holes {
		if err := check(id); err != nil {
			return err
		}
	}
	for _, orb := range T.orbits {
		for _, mem := range orb.members {
			if err := check(mem.node); err != nil {
				return err
			}
		}
	}
	return nil
}

// Representatives returns the orbit representative of every group, sorted.
func (T *Table) Representatives() []lattice.NodeID {
	return T.reps
}

// RequiredHoles returns the sites no molecule may cover, sorted.
func (T *Table) RequiredHoles() []lattice.NodeID {
	return T.holes
}

// Order returns the number of images of the given representative.
func (T *Table) Order(rep lattice.NodeID) int {
	if orb := T.orbits[rep]; orb != nil {
		return len(orb.members)
	}
	return 0
}

// Images returns where a placement at rep with the given rotation and handedness is sent by each group element.
func (T *Table) Images(rep lattice.NodeID, rotation int, mirrored bool) ([]Image, error) {
	orb := T.orbits[rep]
	if orb == nil {
		return nil, errors.Wrapf(hexpack.ErrBadSymmetry, "%s: no orbit for node %d", T.Name, rep)
	}
	if rotation < 0 || rotation >= lattice.NumDirections {
		return nil, errors.Wrapf(hexpack.ErrBadSymmetry, "%s: rotation %d", T.Name, rotation)
	}
	images := make([]Image, len(orb.members))
	for i, mem := range orb.members {
		images[i] = Image{
			Node:     mem.node,
			Mirrored: mem.mirrored != mirrored,
			Rotation: mem.orients[rotation],
		}
	}
	return images, nil
}

// Placements returns every placement forced together with m anchored at anchor, anchor's own included.
func (T *Table) Placements(anchor lattice.NodeID, m molecule.Molecule) ([]molecule.Placement, error) {
	images, err := T.Images(anchor, m.Rotation(), m.Mirrored())
	if err != nil {
		return nil, err
	}
	out := make([]molecule.Placement, len(images))
	for i, img := range images {
		out[i] = molecule.Placement{
			Anchor:   img.Node,
			Molecule: Variant(m, img.Rotation, img.Mirrored),
		}
	}
	return out, nil
}

// Variant returns the member of m's orbit with the given rotation and handedness.
func Variant(m molecule.Molecule, rotation int, mirrored bool) molecule.Molecule {
	if m.Mirrored() != mirrored {
		m = m.Mirror(lattice.Right)
	}
	for n := (rotation - m.Rotation() + 12) % 6; n > 0; n-- {
		m = m.Rotate()
	}
	return m
}
