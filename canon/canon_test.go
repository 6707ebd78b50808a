package canon

import (
	"errors"
	"strings"
	"testing"

	"github.com/2x3systems/hexpack/cover"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/internal/testlattice"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/stretchr/testify/require"
)

func shape(t *testing.T, name string) molecule.Molecule {
	m, err := molecule.Shapes().Lookup(name)
	require.NoError(t, err)
	return m
}

func torus(t *testing.T, w, h int) *lattice.Crystal {
	X, err := lattice.Load(testlattice.Torus(w, h).Source(), lattice.Opts{Name: "torus"})
	require.NoError(t, err)
	return X
}

// enumerate tiles X with every exact cover and files each placement set.
func enumerate(t *testing.T, X *lattice.Crystal, roots ...molecule.Molecule) (*Set, int) {
	M, err := cover.Build(X, cover.Opts{Roots: roots})
	require.NoError(t, err)

	set := NewSet()
	solutions := 0
	_, err = M.Solve(true, func(rows []*cover.Row) bool {
		solutions++
		require.NoError(t, cover.Expand(rows, 0, func(placements []molecule.Placement) error {
			res, err := New(X, roots, placements)
			if err != nil {
				return err
			}
			set.Add(res)
			return nil
		}))
		return true
	})
	require.NoError(t, err)
	return set, solutions
}

func bucketSizes(set *Set) map[string]int {
	sizes := map[string]int{}
	total := 0
	for _, bucket := range set.Buckets() {
		for _, entry := range set.InBucket(bucket) {
			sizes[bucket]++
			total += entry.Count
		}
	}
	if total != set.NumRaw() {
		panic("counts do not add up")
	}
	return sizes
}

func TestHookTorusCanonicalCount(t *testing.T) {
	set, solutions := enumerate(t, torus(t, 4, 4), shape(t, "hook"))
	require.Equal(t, 816, solutions)
	require.Equal(t, 816, set.NumRaw())
	require.Equal(t, 9, set.Len())
	require.Equal(t, map[string]int{"2-2": 4, "3-1": 1, "4-0": 4}, bucketSizes(set))
}

func TestBranchedTorusCanonicalCount(t *testing.T) {
	set, solutions := enumerate(t, torus(t, 4, 2), shape(t, "branched"))
	require.Equal(t, 20, solutions)
	require.Equal(t, 80, set.NumRaw())
	require.Equal(t, map[string]int{"1-1": 2, "2-0": 3}, bucketSizes(set))
}

func TestSymmetricShapesCollapse(t *testing.T) {
	set, solutions := enumerate(t, torus(t, 4, 4), shape(t, "dimer"))
	require.Equal(t, 1920, solutions)
	require.Equal(t, 1, set.Len())
	require.Equal(t, 1920, set.Entries()[0].Count)
	require.Equal(t, BucketAll, set.Entries()[0].Bucket)

	set, solutions = enumerate(t, torus(t, 4, 3), shape(t, "trimer"))
	require.Equal(t, 24, solutions)
	require.Equal(t, 120, set.NumRaw())
	require.Equal(t, map[string]int{BucketAll: 10}, bucketSizes(set))
}

func TestDualRootBuckets(t *testing.T) {
	set, solutions := enumerate(t, torus(t, 3, 2), shape(t, "dimer"), shape(t, "dimer"))
	require.Equal(t, 15, solutions)
	require.Equal(t, 224, set.NumRaw())
	require.Equal(t, map[string]int{"A:S1_B:S2": 6, "A:S2_B:S1": 6, "A:S3": 3, "B:S3": 3}, bucketSizes(set))

	names := AdjacencyNames([]molecule.Molecule{shape(t, "dimer"), shape(t, "dimer")})
	require.Equal(t, []string{"1-1", "1-2", "1-3", "1-4", "2-2", "2-3", "2-4", "3-3", "3-4", "4-4"}, names)
}

// firstTiling returns the placements of the first exact cover found.
func firstTiling(t *testing.T, X *lattice.Crystal, m molecule.Molecule) []molecule.Placement {
	M, err := cover.Build(X, cover.Opts{Roots: []molecule.Molecule{m}})
	require.NoError(t, err)

	var out []molecule.Placement
	M.Solve(true, func(rows []*cover.Row) bool {
		for _, row := range rows {
			out = append(out, row.Choices[0]...)
		}
		return false
	})
	require.NotEmpty(t, out)
	return out
}

func TestTagInvariance(t *testing.T) {
	X := torus(t, 4, 4)
	hook := shape(t, "hook")
	roots := []molecule.Molecule{hook}
	tiling := firstTiling(t, X, hook)

	site := func(q, r int) lattice.NodeID {
		return lattice.NodeID((q%4+4)%4 + ((r%4+4)%4)*4)
	}
	transform := func(f func(q, r int) lattice.NodeID, g func(molecule.Molecule) molecule.Molecule) []molecule.Placement {
		out := make([]molecule.Placement, len(tiling))
		for i, p := range tiling {
			q, r := int(p.Anchor)%4, int(p.Anchor)/4
			out[i] = molecule.Placement{Anchor: f(q, r), Molecule: g(p.Molecule)}
		}
		return out
	}

	base, err := New(X, roots, tiling)
	require.NoError(t, err)

	for name, placements := range map[string][]molecule.Placement{
		"translate": transform(func(q, r int) lattice.NodeID { return site(q+1, r+2) }, func(m molecule.Molecule) molecule.Molecule { return m }),
		"rotate":    transform(func(q, r int) lattice.NodeID { return site(-r, q+r) }, molecule.Molecule.Rotate),
		"mirror": transform(func(q, r int) lattice.NodeID { return site(q+r, -r) }, func(m molecule.Molecule) molecule.Molecule {
			return m.Mirror(lattice.Right)
		}),
	} {
		other, err := New(X, roots, placements)
		require.NoError(t, err, name)
		require.Equal(t, base.Fingerprint, other.Fingerprint, name)
		require.Equal(t, base.Bucket, other.Bucket, name)
	}
}

func TestSymmetricAnchorChoiceIsNotDistinguished(t *testing.T) {
	X := torus(t, 3, 2)
	trimer := shape(t, "trimer")
	reversed := trimer.Rotate().Rotate().Rotate()
	roots := []molecule.Molecule{trimer}

	a, err := New(X, roots, []molecule.Placement{{Anchor: 0, Molecule: trimer}, {Anchor: 3, Molecule: trimer}})
	require.NoError(t, err)
	b, err := New(X, roots, []molecule.Placement{{Anchor: 2, Molecule: reversed}, {Anchor: 3, Molecule: trimer}})
	require.NoError(t, err)

	require.Equal(t, a.Beads, b.Beads)
	require.Equal(t, a.Fingerprint, b.Fingerprint)
	require.NotEqual(t, a.Vector, b.Vector)

	set := NewSet()
	_, isNew := set.Add(a)
	require.True(t, isNew)
	entry, isNew := set.Add(b)
	require.False(t, isNew)
	require.Equal(t, 2, entry.Count)

	entry, _ = set.Add(b)
	require.Equal(t, 2, entry.Count, "a placement set seen before is not counted again")
	require.Equal(t, 2, set.NumRaw())
}

func TestAdjacencyIgnoresBeadLabels(t *testing.T) {
	X := torus(t, 6, 10)
	pentamer := shape(t, "pentamer")
	tiling := firstTiling(t, X, pentamer)

	plain, err := molecule.Parse("plain", molecule.Left, "DR UR R DR / 1 1 1 1 1")
	require.NoError(t, err)

	relabeled := make([]molecule.Placement, len(tiling))
	for i, p := range tiling {
		m := plain
		if p.Molecule.Mirrored() {
			m = m.Mirror(lattice.Right)
		}
		for m.Rotation() != p.Molecule.Rotation() {
			m = m.Rotate()
		}
		relabeled[i] = molecule.Placement{Anchor: p.Anchor, Molecule: m}
	}

	a, err := New(X, []molecule.Molecule{pentamer}, tiling)
	require.NoError(t, err)
	b, err := New(X, []molecule.Molecule{plain}, relabeled)
	require.NoError(t, err)

	sum := func(counts []int) (total int) {
		for _, c := range counts {
			total += c
		}
		return
	}
	require.Equal(t, sum(a.Adjacency), sum(b.Adjacency))
	require.Len(t, a.Adjacency, 15)
	require.Equal(t, 12, len(tiling))
	require.Equal(t, 60*3-12*5, sum(a.Adjacency))
}

// lopsided drops one direction of one edge.
type lopsided struct {
	*lattice.Crystal
}

func (L lopsided) Neighbor(id lattice.NodeID, d lattice.Direction) lattice.NodeID {
	if id == 0 && d == lattice.DownRight {
		return lattice.NilNode
	}
	return L.Crystal.Neighbor(id, d)
}

func TestOddAdjacencyIsAnIntegrityViolation(t *testing.T) {
	X := torus(t, 4, 4)
	dimer := shape(t, "dimer")

	var placements []molecule.Placement
	for anchor := 0; anchor < 16; anchor += 2 {
		placements = append(placements, molecule.Placement{Anchor: lattice.NodeID(anchor), Molecule: dimer})
	}
	_, err := New(X, []molecule.Molecule{dimer}, placements)
	require.NoError(t, err)

	_, err = New(lopsided{X}, []molecule.Molecule{dimer}, placements)
	require.True(t, errors.Is(err, hexpack.ErrAdjacencyIntegrity))

	_, err = New(X, []molecule.Molecule{dimer}, append(placements, placements[0]))
	require.True(t, errors.Is(err, hexpack.ErrAdjacencyIntegrity))
}

func TestHolesInVectors(t *testing.T) {
	X, err := lattice.Load(testlattice.Patch(1).Source(), lattice.Opts{MoleculeSize: 2})
	require.NoError(t, err)
	dimer := shape(t, "dimer")

	M, err := cover.Build(X, cover.Opts{Roots: []molecule.Molecule{dimer}})
	require.NoError(t, err)

	var results []*Result
	M.Solve(true, func(rows []*cover.Row) bool {
		require.NoError(t, cover.Expand(rows, 0, func(placements []molecule.Placement) error {
			res, err := New(X, M.Roots, placements)
			results = append(results, res)
			return err
		}))
		return true
	})
	require.Len(t, results, 2)
	for _, res := range results {
		require.Equal(t, -1, res.Vector[0])
		require.Equal(t, 0, res.Beads[0])
		require.Equal(t, []int{3, 0, 0}, res.Adjacency, "three dimers around the hole touch end to end")
	}
}

func TestFingerprintBytes(t *testing.T) {
	fp := Fingerprint{Adjacency: packCounts([]int{0, 3, 300}), Tag: "\x01\x02\xff\x01"}
	got, err := FingerprintFromBytes(fp.Bytes())
	require.NoError(t, err)
	require.Equal(t, fp, got)

	counts, err := UnpackCounts(got.Adjacency)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3, 300}, counts)

	_, err = FingerprintFromBytes([]byte{0x09, 0x01})
	require.True(t, errors.Is(err, hexpack.ErrUnmarshal))
}

func TestRotateLeast(t *testing.T) {
	for in, want := range map[string]string{
		"":       "",
		"a":      "a",
		"caab":   "abca",
		"bbaba":  "ababb",
		"aaaa":   "aaaa",
		"cabcab": "abcabc",
	} {
		require.Equal(t, want, string(rotateLeast([]byte(in))), in)
	}
}

func TestWriteAsString(t *testing.T) {
	X := torus(t, 2, 1)
	dimer := shape(t, "dimer")
	res, err := New(X, []molecule.Molecule{dimer}, []molecule.Placement{{Anchor: 0, Molecule: dimer}})
	require.NoError(t, err)

	var b strings.Builder
	res.WriteAsString(&b, hexpack.PrintOpts{Label: "#1", Adjacency: true, Placements: true})
	require.Equal(t, "#1 all adj=[0 0 0] placements=[1 0]\n", b.String())
}
