package catalog_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/2x3systems/hexpack/canon"
	"github.com/2x3systems/hexpack/catalog"
	"github.com/2x3systems/hexpack/cover"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/internal/testlattice"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/stretchr/testify/require"
)

func hookSet(t *testing.T) (*canon.Set, []molecule.Molecule) {
	X, err := lattice.Load(testlattice.Torus(4, 4).Source(), lattice.Opts{Name: "t4x4", MoleculeSize: 4})
	require.NoError(t, err)
	hook, err := molecule.Shapes().Lookup("hook")
	require.NoError(t, err)
	roots := []molecule.Molecule{hook}

	M, err := cover.Build(X, cover.Opts{Roots: roots})
	require.NoError(t, err)

	set := canon.NewSet()
	_, err = M.Solve(true, func(rows []*cover.Row) bool {
		require.NoError(t, cover.Expand(rows, 0, func(placements []molecule.Placement) error {
			res, err := canon.New(X, roots, placements)
			if err == nil {
				set.Add(res)
			}
			return err
		}))
		return true
	})
	require.NoError(t, err)
	return set, roots
}

func TestMergeAccumulatesCounts(t *testing.T) {
	ctx := hexpack.NewCatalogContext()
	defer ctx.Close()

	cat, err := catalog.Open(ctx, catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	set, roots := hookSet(t)
	scope := catalog.ScopeOf("t4x4", roots)
	require.Equal(t, "t4x4/hook", scope)

	added, err := cat.Merge(scope, set)
	require.NoError(t, err)
	require.Equal(t, 9, added)
	require.EqualValues(t, 9, cat.NumEntries())

	added, err = cat.Merge(scope, set)
	require.NoError(t, err)
	require.Equal(t, 0, added)
	require.EqualValues(t, 9, cat.NumEntries())

	total := uint64(0)
	err = cat.Select(scope, func(rec *catalog.Record) bool {
		require.Equal(t, scope, rec.Scope)
		require.Len(t, rec.Vector, 16)
		require.Len(t, rec.Beads, 16)
		total += rec.Count
		return true
	})
	require.NoError(t, err)
	require.EqualValues(t, 2*816, total)

	first := set.Entries()[0]
	rec, err := cat.Lookup(scope, first.Bucket, first.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.EqualValues(t, 2*first.Count, rec.Count)
	require.Equal(t, first.Vector, rec.Vector)
	require.Equal(t, first.Beads, rec.Beads)

	rec, err = cat.Lookup("t4x4/other", first.Bucket, first.Fingerprint)
	require.NoError(t, err)
	require.Nil(t, rec)

	seen := 0
	require.NoError(t, cat.Select(scope, func(*catalog.Record) bool {
		seen++
		return false
	}))
	require.Equal(t, 1, seen)
}

func TestPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	opts := catalog.Opts{DbPathName: filepath.Join(dir, "hexpack.cat")}

	ctx := hexpack.NewCatalogContext()
	defer ctx.Close()

	set, roots := hookSet(t)
	scope := catalog.ScopeOf("t4x4", roots)

	cat, err := catalog.Open(ctx, opts)
	require.NoError(t, err)
	_, err = cat.Merge(scope, set)
	require.NoError(t, err)
	require.NoError(t, cat.Close())
	require.NoError(t, cat.Close())

	_, err = cat.Merge(scope, set)
	require.True(t, errors.Is(err, hexpack.ErrBadCatalogParam))

	cat, err = catalog.Open(ctx, opts)
	require.NoError(t, err)
	defer cat.Close()
	require.EqualValues(t, 9, cat.NumEntries())

	first := set.Entries()[0]
	rec, err := cat.Lookup(scope, first.Bucket, first.Fingerprint)
	require.NoError(t, err)
	require.EqualValues(t, first.Count, rec.Count)
}

func TestBadParams(t *testing.T) {
	_, err := catalog.Open(nil, catalog.Opts{})
	require.True(t, errors.Is(err, hexpack.ErrBadCatalogParam))

	ctx := hexpack.NewCatalogContext()
	defer ctx.Close()

	_, err = catalog.Open(ctx, catalog.Opts{ReadOnly: true})
	require.True(t, errors.Is(err, hexpack.ErrBadCatalogParam))

	cat, err := catalog.Open(ctx, catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	_, err = cat.Merge("", canon.NewSet())
	require.True(t, errors.Is(err, hexpack.ErrBadCatalogParam))
}

func TestContextClosesCatalogs(t *testing.T) {
	ctx := hexpack.NewCatalogContext()
	cat, err := catalog.Open(ctx, catalog.Opts{})
	require.NoError(t, err)

	ctx.Close()
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("catalog context did not finish closing")
	}
	require.Equal(t, uint64(0), cat.NumEntries())
}
