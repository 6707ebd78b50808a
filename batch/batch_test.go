package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/2x3systems/hexpack/catalog"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/internal/testlattice"
	"github.com/2x3systems/hexpack/report"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(`
lattice_dir = "lattices"
lattices = ["t6x10", "t4x4"]
molecules = ["pentamer"]
deadline = "90s"
heuristic = true

[output]
driver = "s3"
bucket = "tilings"
gzip = true
`)
	require.NoError(t, err)
	require.Equal(t, "lattices", cfg.LatticeDir)
	require.Equal(t, []string{"t6x10", "t4x4"}, cfg.Lattices)
	require.Equal(t, 90*time.Second, cfg.Deadline.Duration)
	require.True(t, cfg.Heuristic)
	require.Equal(t, hexpack.DefaultMaxExpansions, cfg.MaxExpansions)
	require.Positive(t, cfg.Workers)
	require.Equal(t, report.DriverS3, cfg.Output.StoreOpts().Driver)
	require.Equal(t, "tilings", cfg.Output.StoreOpts().Bucket)
	require.True(t, cfg.Output.Gzip)

	for _, bad := range []string{
		`lattices = ["a"]`,
		`molecules = ["dimer"]`,
		`lattices = ["a"]
molecules = ["dimer", "dimer", "dimer"]`,
		`lattices = ["a"]
molecules = ["dimer"]
deadline = "soon"`,
		`lattices = ["a"]
molecules = ["dimer"]
colour = "blue"`,
		`lattices = ["a"]
molecules = ["dimer"]
holes = -1`,
	} {
		_, err = ParseConfig(bad)
		require.True(t, errors.Is(err, hexpack.ErrBadConfig), bad)
	}
}

func writeLattices(t *testing.T, dir string) {
	require.NoError(t, testlattice.Torus(4, 4).WriteDir(dir, "t4x4"))
	require.NoError(t, testlattice.Torus(4, 2).WriteDir(dir, "t4x2"))
	require.NoError(t, testlattice.Patch(1).WriteDir(dir, "p1"))

	// a lattice whose edges do not pair up
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.nbr"), []byte("0 1 0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xyz"), []byte(""), 0o644))
}

func TestRunBatch(t *testing.T) {
	latticeDir := t.TempDir()
	outDir := t.TempDir()
	writeLattices(t, latticeDir)

	cfg := &Config{
		LatticeDir:  latticeDir,
		Lattices:    []string{"t4x4", "t4x2", "broken", "missing"},
		Molecules:   []string{"branched"},
		Heuristic:   true,
		Workers:     2,
		MetricsFile: filepath.Join(outDir, "hexpack.prom"),
		Catalog:     filepath.Join(outDir, "catalog"),
		Output: Output{
			Driver: "fs",
			Root:   outDir,
		},
	}

	catCtx := hexpack.NewCatalogContext()
	defer catCtx.Close()

	summary, err := Run(context.Background(), cfg, catCtx)
	require.NoError(t, err)
	require.Equal(t, []string{"t4x2/branched.json", "t4x4/branched.json"}, summary.Written)
	require.Len(t, summary.Failed, 2)
	require.True(t, errors.Is(summary.Failed["broken"], hexpack.ErrInvalidTopology))
	require.True(t, errors.Is(summary.Failed["missing"], hexpack.ErrMalformedInput))

	file, err := os.Open(filepath.Join(outDir, "t4x2", "branched.json"))
	require.NoError(t, err)
	defer file.Close()
	doc, err := report.Decode(file)
	require.NoError(t, err)
	require.Equal(t, 5, doc.Canonical)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `hexpack_lattices_total{status="failed"} 2`)
	require.Contains(t, string(prom), `hexpack_lattices_total{status="ok"} 2`)
	require.Contains(t, string(prom), `hexpack_canonical_results{lattice="t4x2"} 5`)
	require.Contains(t, string(prom), fmt.Sprintf("hexpack_solutions_total %d", summary.Solutions))

	cat, err := catalog.Open(catCtx, catalog.Opts{DbPathName: cfg.Catalog})
	require.NoError(t, err)
	defer cat.Close()
	require.EqualValues(t, summary.Canonical, cat.NumEntries())
}

func TestRunBatchWithHolesAndSymmetry(t *testing.T) {
	latticeDir := t.TempDir()
	writeLattices(t, latticeDir)

	var sym strings.Builder
	for gi, rep := range []int{0, 1, 4, 5} {
		for _, off := range []int{0, 2, 8, 10} {
			fmt.Fprintf(&sym, "%d %d 0 0 0 1 2 3 4 5\n", gi, rep+off)
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(latticeDir, "t4x4.sym"), []byte(sym.String()), 0o644))

	cfg := &Config{
		LatticeDir: latticeDir,
		Lattices:   []string{"t4x4"},
		Molecules:  []string{"dimer"},
		Symmetry:   true,
		Output:     Output{Root: t.TempDir()},
	}
	summary, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Empty(t, summary.Failed)
	require.EqualValues(t, 3, summary.Solutions)

	cfg = &Config{
		LatticeDir: latticeDir,
		Lattices:   []string{"p1"},
		Molecules:  []string{"dimer"},
		Holes:      3,
		Output:     Output{Root: t.TempDir(), Gzip: true},
	}
	summary, err = Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Empty(t, summary.Failed)
	require.Equal(t, []string{"p1/dimer.json.gz"}, summary.Written)
	require.EqualValues(t, 18, summary.Solutions)

	cfg.Molecules = []string{"nonesuch"}
	_, err = Run(context.Background(), cfg, nil)
	require.True(t, errors.Is(err, hexpack.ErrUnknownMolecule))
}
