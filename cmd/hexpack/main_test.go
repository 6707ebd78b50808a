package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2x3systems/hexpack/internal/testlattice"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestShapesCmd(t *testing.T) {
	out, err := execute(t, "shapes")
	require.NoError(t, err)
	require.Contains(t, out, "pentamer")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 7)
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testlattice.Torus(4, 2).WriteDir(dir, "t4x2"))

	config := fmt.Sprintf(`
lattice_dir = %q
lattices = ["t4x2"]
molecules = ["branched"]
heuristic = true

[output]
root = %q
`, dir, filepath.Join(dir, "out"))
	configPath := filepath.Join(dir, "batch.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	out, err := execute(t, "run", configPath, "--workers", "1")
	require.NoError(t, err)
	require.Contains(t, out, "t4x2/branched.json\n")
	require.Contains(t, out, "1 written, 0 failed, 20 solutions, 5 canonical")

	_, err = execute(t, "run", filepath.Join(dir, "nonesuch.toml"))
	require.Error(t, err)
}

func TestScriptCmd(t *testing.T) {
	dir := t.TempDir()
	pyFile := filepath.Join(dir, "shapes.py")
	require.NoError(t, os.WriteFile(pyFile, []byte("import _hexpack\nn = len(_hexpack.Shapes())\n"), 0o644))

	out, err := execute(t, "script", pyFile)
	require.NoError(t, err)
	require.Contains(t, out, "execution complete")
}
