package molecule

import (
	"strconv"
	"strings"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/pkg/errors"
)

var orientationNames = [...]string{
	Left:      "Left",
	Right:     "Right",
	AChiral:   "AChiral",
	Symmetric: "Symmetric",
	Circular:  "Circular",
}

func (o Orientation) String() string {
	if o < Left || o > Circular {
		return "?"
	}
	return orientationNames[o]
}

// IsChiral returns true for Left and Right.
func (o Orientation) IsChiral() bool {
	return o == Left || o == Right
}

// Flip swaps Left and Right and leaves every other orientation alone.
func (o Orientation) Flip() Orientation {
	switch o {
	case Left:
		return Right
	case Right:
		return Left
	}
	return o
}

// OrientationFromName is the inverse of Orientation.String().
func OrientationFromName(name string) (Orientation, error) {
	for o, str := range orientationNames {
		if o > 0 && strings.EqualFold(str, name) {
			return Orientation(o), nil
		}
	}
	return 0, errors.Wrapf(hexpack.ErrBadMolecule, "unknown orientation %q", name)
}

// New builds a molecule from steps and a bead ID per walk position (anchor first).
func New(name string, orient Orientation, steps []lattice.Direction, beads []int) (Molecule, error) {
	if orient < Left || orient > Circular {
		return Molecule{}, errors.Wrapf(hexpack.ErrBadMolecule, "%q: bad orientation %d", name, orient)
	}

	size := 1
	for _, d := range steps {
		if d == lattice.Back {
			continue
		}
		if !d.IsValid() {
			return Molecule{}, errors.Wrapf(hexpack.ErrBadDirection, "%q: step %d", name, d)
		}
		size++
	}
	if len(beads) != size {
		return Molecule{}, errors.Wrapf(hexpack.ErrBadMolecule, "%q: %d beads given for %d sites", name, len(beads), size)
	}
	for _, b := range beads {
		if b < 1 || b > size {
			return Molecule{}, errors.Wrapf(hexpack.ErrBadBeadID, "%q: bead %d not in 1..%d", name, b, size)
		}
	}
	if 2*size > hexpack.MaxBeadID {
		return Molecule{}, errors.Wrapf(hexpack.ErrBadMolecule, "%q: %d sites is too large", name, size)
	}
	if orient == Circular && size != 1 {
		return Molecule{}, errors.Wrapf(hexpack.ErrBadMolecule, "%q: a circular shape has one site", name)
	}

	return Molecule{
		Name:        name,
		orientation: orient,
		steps:       append([]lattice.Direction(nil), steps...),
		beads:       append([]int(nil), beads...),
	}, nil
}

// Hole is the single-site placeholder covering an uncovered site.
var Hole = Molecule{
	Name:        "hole",
	orientation: Circular,
	beads:       []int{1},
}

// Size is the number of sites one placed instance occupies.
func (m Molecule) Size() int {
	return len(m.beads)
}

func (m Molecule) Orientation() Orientation {
	return m.orientation
}

// Rotation is the cumulative number of Rotate() calls applied, mod 6.
func (m Molecule) Rotation() int {
	return int(m.rotation)
}

// Mirrored is true if an odd number of Mirror() calls were applied.
func (m Molecule) Mirrored() bool {
	return m.mirrored
}

// Steps returns a copy of the walk steps.
func (m Molecule) Steps() []lattice.Direction {
	return append([]lattice.Direction(nil), m.steps...)
}

// Beads returns a copy of the bead ID per walk position.
func (m Molecule) Beads() []int {
	return append([]int(nil), m.beads...)
}

// VariantCode is 0 for the unrotated shape, otherwise rotation+1, plus 6 if mirrored.
func (m Molecule) VariantCode() int {
	code := int(m.rotation) + 1
	if m.mirrored {
		code += 6
	}
	return code
}

// Rotate returns m with every step turned one sixth clockwise.
func (m Molecule) Rotate() Molecule {
	out := m
	out.steps = make([]lattice.Direction, len(m.steps))
	for i, d := range m.steps {
		out.steps[i] = d.Rotate()
	}
	out.rotation = (m.rotation + 1) % 6
	return out
}

// Mirror returns m with every step reflected across axis.  Left and Right swap.
func (m Molecule) Mirror(axis lattice.Direction) Molecule {
	out := m
	out.steps = make([]lattice.Direction, len(m.steps))
	for i, d := range m.steps {
		out.steps[i] = d.Mirror(axis)
	}
	out.orientation = m.orientation.Flip()
	out.rotation = (6 - m.rotation) % 6
	out.mirrored = !m.mirrored
	return out
}

// Equal compares orientation and steps.
func (m Molecule) Equal(other Molecule) bool {
	if m.orientation != other.orientation || len(m.steps) != len(other.steps) {
		return false
	}
	for i, d := range m.steps {
		if other.steps[i] != d {
			return false
		}
	}
	return true
}

// Orbit returns every distinct oriented variant of m: 12 for chiral shapes (6 rotations of m and of
// its mirror), 6 for AChiral, 3 for Symmetric and 1 for Circular.
func (m Molecule) Orbit() []Molecule {
	switch m.orientation {
	case Circular:
		return []Molecule{m}
	case Symmetric:
		return rotations(m, 3)
	case AChiral:
		return rotations(m, 6)
	}
	return append(rotations(m, 6), rotations(m.Mirror(lattice.Right), 6)...)
}

func rotations(m Molecule, n int) []Molecule {
	out := make([]Molecule, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, m)
		m = m.Rotate()
	}
	return out
}

// String renders m in the step grammar, e.g. "DR UR R DR / 1 2 3 4 5"
func (m Molecule) String() string {
	var b strings.Builder
	for _, d := range m.steps {
		b.WriteString(d.String())
		b.WriteByte(' ')
	}
	b.WriteByte('/')
	for _, bead := range m.beads {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(bead))
	}
	return b.String()
}
