package pyhexpack

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/2x3systems/hexpack/catalog"
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/2x3systems/hexpack/molecule"
	"github.com/2x3systems/hexpack/packing"
	"github.com/2x3systems/hexpack/report"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyCrystalType   = py.NewType("Crystal", "a loaded hexagonal lattice")
	pyRunType       = py.NewType("Run", "the canonical tilings of one crystal")
	pyCatalogType   = py.NewType("Catalog", "a persistent catalog of canonical tilings")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

func pyErr(err error) error {
	return py.ExceptionNewf(py.RuntimeError, "%v", err)
}

type pyCrystal struct {
	*lattice.Crystal
}

func (X pyCrystal) Type() *py.Type {
	return pyCrystalType
}

func (X pyCrystal) M__str__() (py.Object, error) {
	return py.String(fmt.Sprintf("Crystal(%q, %d sites, hole=%d)", X.Name, X.NumNodes(), X.Hole())), nil
}

func (X pyCrystal) M__repr__() (py.Object, error) {
	return X.M__str__()
}

// Arg 1 (str): lattice dir
// Arg 2 (str): lattice name
// Arg 3 (int, optional): molecule size
// Arg 4 (int, optional): hole count
func py_LoadCrystal(module py.Object, args py.Tuple) (py.Object, error) {
	var dir, name string
	var moleculeSize, holes int32
	err := py.LoadTuple(args, []interface{}{&dir, &name, &moleculeSize, &holes})
	if err != nil {
		return nil, err
	}

	X, err := lattice.Open(dir, lattice.Opts{
		Name:         name,
		MoleculeSize: int(moleculeSize),
		Holes:        int(holes),
	})
	if err != nil {
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}
	return py.Object(pyCrystal{X}), nil
}

func py_Crystal_NumNodes(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyCrystal)
	return py.Int(X.NumNodes()), nil
}

func py_Crystal_Hole(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyCrystal)
	return py.Int(X.Hole()), nil
}

func py_Shapes(module py.Object, args py.Tuple) (py.Object, error) {
	defs := molecule.Shapes().Defs()
	names := make(py.Tuple, len(defs))
	for i, def := range defs {
		names[i] = py.String(def.Name)
	}
	return names, nil
}

// lookupRoots resolves "hook" or "dimer+dimer".
func lookupRoots(names string) ([]molecule.Molecule, error) {
	var roots []molecule.Molecule
	for _, name := range strings.Split(names, "+") {
		m, err := molecule.Shapes().Lookup(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		roots = append(roots, m)
	}
	return roots, nil
}

type pyRun struct {
	*packing.Run
}

func (run pyRun) Type() *py.Type {
	return pyRunType
}

func (run pyRun) M__str__() (py.Object, error) {
	return py.String(fmt.Sprintf("Run(%q, %d solutions, %d canonical)", run.Crystal.Name, run.Solutions, run.Set.Len())), nil
}

func (run pyRun) M__repr__() (py.Object, error) {
	return run.M__str__()
}

// Arg 1 (Crystal)
// Arg 2 (str): root molecule name(s), e.g. "hook" or "dimer+dimer"
// kwargs: max_results (int), heuristic (bool), max_expansions (int)
func py_Enumerate(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	if len(args) != 2 {
		return nil, py.ExceptionNewf(py.TypeError, "Enumerate() takes a Crystal and molecule name(s)")
	}
	X, ok := args[0].(pyCrystal)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Crystal object (got %v)", args[0].Type().Name)
	}
	names, ok := args[1].(py.String)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected molecule name(s) (got %v)", args[1].Type().Name)
	}

	roots, err := lookupRoots(string(names))
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}

	var maxResults, maxExpansions int32
	heuristic := true
	py.LoadAttr(kwargs, "max_results", &maxResults)
	py.LoadAttr(kwargs, "max_expansions", &maxExpansions)
	py.LoadAttr(kwargs, "heuristic", &heuristic)

	run, err := packing.Enumerate(context.Background(), X.Crystal, roots, packing.Opts{
		UseHeuristic:  heuristic,
		MaxResults:    int(maxResults),
		MaxExpansions: int(maxExpansions),
	})
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Object(pyRun{run}), nil
}

func py_Run_NumSolutions(self py.Object, args py.Tuple) (py.Object, error) {
	run := self.(pyRun)
	return py.Int(run.Solutions), nil
}

func py_Run_NumCanonical(self py.Object, args py.Tuple) (py.Object, error) {
	run := self.(pyRun)
	return py.Int(run.Set.Len()), nil
}

func py_Run_NumRaw(self py.Object, args py.Tuple) (py.Object, error) {
	run := self.(pyRun)
	return py.Int(run.Set.NumRaw()), nil
}

func py_Run_Buckets(self py.Object, args py.Tuple) (py.Object, error) {
	run := self.(pyRun)
	buckets := run.Set.Buckets()
	out := make(py.Tuple, len(buckets))
	for i, label := range buckets {
		out[i] = py.String(label)
	}
	return out, nil
}

var gOutCount = int32(0)

// Print writes each canonical result, one per line.
// Arg 1 (str, optional): label
// kwargs: label, beads, adjacency, placements (bool), file (str)
func py_Run_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	run := self.(pyRun)
	var pathname string

	opts := hexpack.DefaultPrintOpts

	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		py.LoadAttr(kwargs, "label", &opts.Label)
	}

	outCount := atomic.AddInt32(&gOutCount, 1)
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", outCount)
	}

	py.LoadAttr(kwargs, "beads", &opts.Beads)
	py.LoadAttr(kwargs, "adjacency", &opts.Adjacency)
	py.LoadAttr(kwargs, "placements", &opts.Placements)
	py.LoadAttr(kwargs, "file", &pathname)

	var out io.Writer = os.Stdout
	if pathname != "" {
		file, err := os.Create(pathname)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		defer file.Close()
		out = file
	}

	label := opts.Label
	for i, entry := range run.Set.Entries() {
		opts.Label = fmt.Sprintf("%s.%d x%d", label, i+1, entry.Count)
		entry.WriteAsString(out, opts)
	}
	return py.Int(run.Set.Len()), nil
}

// Write saves the run's report document under the given directory.
// Arg 1 (str): output dir
// Arg 2 (int, optional): nonzero to gzip
func py_Run_Write(self py.Object, args py.Tuple) (py.Object, error) {
	run := self.(pyRun)
	var dir string
	var compressed int32
	if err := py.LoadTuple(args, []interface{}{&dir, &compressed}); err != nil {
		return nil, err
	}

	ctx := context.Background()
	store, err := report.OpenStore(ctx, report.StoreOpts{Root: dir})
	if err != nil {
		return nil, pyErr(err)
	}
	key, err := report.Write(ctx, store, report.New(run.Run), compressed != 0)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.String(key), nil
}

type Workspace struct {
	CatalogCtx hexpack.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: hexpack.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

// Arg 1 (str): catalog pathname; empty for an in-memory catalog
// Arg 2 (int, optional): flags
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(ws.CatalogCtx, catalog.Opts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
	})
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Object(pyCatalog{cat}), nil
}

type pyCatalog struct {
	*catalog.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if err := cat.Close(); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func py_Catalog_NumEntries(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return py.Int(cat.NumEntries()), nil
}

// Merge adds a Run's canonical results and returns how many were new to the catalog.
func py_Catalog_Merge(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Merge() takes one Run")
	}
	run, ok := args[0].(pyRun)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Run object (got %v)", args[0].Type().Name)
	}
	added, err := cat.Merge(catalog.ScopeOf(run.Crystal.Name, run.Roots), run.Set)
	if err != nil {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", err)
	}
	return py.Int(added), nil
}

func init() {

	/////////////////////////////////
	// Crystal
	{
		pyCrystalType.Dict["NumNodes"] = py.MustNewMethod("NumNodes", py_Crystal_NumNodes, 0, "returns the number of lattice sites")
		pyCrystalType.Dict["Hole"] = py.MustNewMethod("Hole", py_Crystal_Hole, 0, "returns the excised site, or -1")
	}

	/////////////////////////////////
	// Run
	{
		pyRunType.Dict["NumSolutions"] = py.MustNewMethod("NumSolutions", py_Run_NumSolutions, 0, "")
		pyRunType.Dict["NumCanonical"] = py.MustNewMethod("NumCanonical", py_Run_NumCanonical, 0, "")
		pyRunType.Dict["NumRaw"] = py.MustNewMethod("NumRaw", py_Run_NumRaw, 0, "")
		pyRunType.Dict["Buckets"] = py.MustNewMethod("Buckets", py_Run_Buckets, 0, "returns the sorted bucket labels")
		pyRunType.Dict["Print"] = py.MustNewMethod("Print", py_Run_Print, 0, "prints each canonical result")
		pyRunType.Dict["Write"] = py.MustNewMethod("Write", py_Run_Write, 0, "writes the report document under the given dir")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Merge"] = py.MustNewMethod("Merge", py_Catalog_Merge, 0, "")
		pyCatalogType.Dict["NumEntries"] = py.MustNewMethod("NumEntries", py_Catalog_NumEntries, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("LoadCrystal", py_LoadCrystal, 0, "LoadCrystal(dir, name[, molecule_size[, holes]])"),
			py.MustNewMethod("Enumerate", py_Enumerate, 0, "Enumerate(crystal, molecules, max_results=0, heuristic=True)"),
			py.MustNewMethod("Shapes", py_Shapes, 0, "returns the names of the built-in shapes"),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"READ_ONLY":   py.Int(READ_ONLY),
			"MAX_BEAD":    py.Int(hexpack.MaxBeadID),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_hexpack",
				Doc:  "hexagonal lattice packing gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
