package symmetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/stretchr/testify/require"
)

// evenTranslations is the group of translations by even offsets on a 4x4 torus.
func evenTranslations() string {
	var b strings.Builder
	b.WriteString("# translations by (0,0) (2,0) (0,2) (2,2)\n")
	for gi, rep := range []int{0, 1, 4, 5} {
		for _, off := range []int{0, 2, 8, 10} {
			fmt.Fprintf(&b, "%d %d 0 0 0 1 2 3 4 5\n", gi, rep+off)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestReadTable(t *testing.T) {
	src := evenTranslations() + "7 3 0 1 0 5 4 3 2 1\n7 12 1 0\n"
	T, err := Read("t4", strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, T.Validate(16))
	require.Error(t, T.Validate(10))

	require.Equal(t, []lattice.NodeID{0, 1, 3, 4, 5}, T.Representatives())
	require.Equal(t, []lattice.NodeID{12}, T.RequiredHoles())
	require.Equal(t, 4, T.Order(5))
	require.Equal(t, 1, T.Order(3))
	require.Equal(t, 0, T.Order(2))

	images, err := T.Images(1, 2, false)
	require.NoError(t, err)
	require.Equal(t, []Image{{1, false, 2}, {3, false, 2}, {9, false, 2}, {11, false, 2}}, images)

	images, err = T.Images(3, 1, true)
	require.NoError(t, err)
	require.Equal(t, []Image{{3, false, 5}}, images)

	_, err = T.Images(2, 0, false)
	require.True(t, errors.Is(err, hexpack.ErrBadSymmetry))
}

func TestReadRejectsMalformed(t *testing.T) {
	for _, src := range []string{
		"0 1 0 0 0 1 2\n",
		"0 1 0 0 0 1 2 3 4 9\n",
		"0 1 2 0 0 1 2 3 4 5\n",
		"0 -1 0 0 0 1 2 3 4 5\n",
		"0 1 0 0 a\n",
	} {
		_, err := Read("bad", strings.NewReader(src))
		require.True(t, errors.Is(err, hexpack.ErrBadSymmetry), src)
	}
}

func TestPlacementsForceImages(t *testing.T) {
	T, err := Read("t4", strings.NewReader(evenTranslations()))
	require.NoError(t, err)

	m, err := molecule.Shapes().Lookup("pentamer")
	require.NoError(t, err)
	m = m.Mirror(lattice.Right).Rotate().Rotate()

	placements, err := T.Placements(4, m)
	require.NoError(t, err)
	require.Len(t, placements, 4)
	for _, p := range placements {
		require.True(t, p.Molecule.Equal(m))
		require.Equal(t, 2, p.Molecule.Rotation())
	}
	require.Equal(t, lattice.NodeID(14), placements[3].Anchor)
}

func TestVariantMatchesOrbit(t *testing.T) {
	m, err := molecule.Shapes().Lookup("hook")
	require.NoError(t, err)

	orbit := m.Orbit()
	for _, from := range orbit {
		for _, want := range orbit {
			got := Variant(from, want.Rotation(), want.Mirrored())
			require.True(t, got.Equal(want))
			require.Equal(t, want.VariantCode(), got.VariantCode())
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t4"+lattice.SymmetryExt), []byte(evenTranslations()), 0o644))

	T, err := Open(dir, "t4")
	require.NoError(t, err)
	require.Len(t, T.Representatives(), 4)

	_, err = Open(dir, "missing")
	require.True(t, errors.Is(err, hexpack.ErrBadSymmetry))
}
