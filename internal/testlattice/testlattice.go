// Package testlattice writes small lattice descriptions for tests.
package testlattice

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
)

// Lattice holds the text of a neighbor description and a coordinate description.
type Lattice struct {
	Neighbors string
	Coords    string
}

// Source returns fresh readers over both descriptions.
func (L Lattice) Source() lattice.Source {
	return lattice.Source{
		Neighbors: strings.NewReader(L.Neighbors),
		Coords:    strings.NewReader(L.Coords),
	}
}

// WriteDir writes both descriptions as <dir>/<name>.nbr and <dir>/<name>.xyz
func (L Lattice) WriteDir(dir, name string) error {
	base := filepath.Join(dir, name)
	if err := os.WriteFile(base+lattice.NeighborsExt, []byte(L.Neighbors), 0o644); err != nil {
		return err
	}
	return os.WriteFile(base+lattice.CoordsExt, []byte(L.Coords), 0o644)
}

// axial step per direction, indexed by Direction.Slot()
var steps = [lattice.NumDirections][2]int{
	{+1, 0},  // R
	{0, +1},  // DR
	{-1, +1}, // DL
	{-1, 0},  // L
	{0, -1},  // UL
	{+1, -1}, // UR
}

var sqrt3_2 = math.Sqrt(3) / 2

func position(q, r int) (x, y float64) {
	return float64(q) + 0.5*float64(r), sqrt3_2 * float64(r)
}

// Torus returns a periodic w x h parallelogram; node q + r*w sits at axial (q, r).
func Torus(w, h int) Lattice {
	var nbr, xyz strings.Builder
	for r := 0; r < h; r++ {
		for q := 0; q < w; q++ {
			id := q + r*w
			for i, step := range steps {
				nq := (q + step[0] + w) % w
				nr := (r + step[1] + h) % h
				fmt.Fprintf(&nbr, "%d %d %d\n", id, lattice.Directions[i].Code(), nq+nr*w)
			}
		}
	}

	ax, ay := position(w, 0)
	bx, by := position(0, h)
	for r := 0; r < h; r++ {
		for q := 0; q < w; q++ {
			x, y := position(q, r)
			for i := 0; i < hexpack.NumReplicas; i++ {
				di, dj := float64(i%3-1), float64(i/3-1)
				fmt.Fprintf(&xyz, "%d\t%.4f\t%.4f\t%.4f\n", q+r*w, x+di*ax+dj*bx, y+di*ay+dj*by, 0.0)
			}
		}
	}
	return Lattice{nbr.String(), xyz.String()}
}

// Patch returns a bounded hexagon of the given radius with node 0 at its center.
// Edges leaving the patch are declared open with a -1 neighbor.
func Patch(radius int) Lattice {
	type axial [2]int

	var cells []axial
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			if s := -q - r; s >= -radius && s <= radius {
				cells = append(cells, axial{q, r})
			}
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		di, dj := ring(cells[i]), ring(cells[j])
		if di != dj {
			return di < dj
		}
		if cells[i][1] != cells[j][1] {
			return cells[i][1] < cells[j][1]
		}
		return cells[i][0] < cells[j][0]
	})

	index := make(map[axial]int, len(cells))
	for id, c := range cells {
		index[c] = id
	}

	var nbr, xyz strings.Builder
	for id, c := range cells {
		for i, step := range steps {
			to, ok := index[axial{c[0] + step[0], c[1] + step[1]}]
			if !ok {
				to = -1
			}
			fmt.Fprintf(&nbr, "%d %d %d\n", id, lattice.Directions[i].Code(), to)
		}
		x, y := position(c[0], c[1])
		for i := 0; i < hexpack.NumReplicas; i++ {
			fmt.Fprintf(&xyz, "%d\t%.4f\t%.4f\t%.4f\n", id, x, y, float64(i))
		}
	}
	return Lattice{nbr.String(), xyz.String()}
}

func ring(c [2]int) int {
	q, r := c[0], c[1]
	return (abs(q) + abs(r) + abs(q+r)) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
