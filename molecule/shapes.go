package molecule

import (
	"strconv"

	"github.com/2x3systems/hexpack/hexpack"
	"github.com/pkg/errors"
)

// ShapeDef is one entry of the built-in shape table.
type ShapeDef struct {
	Num    int
	Name   string
	Orient Orientation
	Expr   string
}

var shapeDefs = []ShapeDef{
	{0, "hole", Circular, "/ 1"},
	{1, "dimer", Symmetric, "R / 1 1"},
	{2, "trimer", Symmetric, "R R / 1 2 1"},
	{3, "bent", AChiral, "R DR / 1 2 1"},
	{4, "pentamer", Left, "DR UR R DR / 1 2 3 4 5"},
	{5, "branched", Left, "R R B DR / 1 2 3 4"},
	{6, "hook", Left, "R R DR / 1 2 3 4"},
}

// Registry is an immutable set of named shapes.
type Registry struct {
	defs   []ShapeDef
	byName map[string]Molecule
	byNum  map[int]Molecule
}

// NewRegistry parses every shape definition, failing on the first bad one.
func NewRegistry(defs []ShapeDef) (*Registry, error) {
	reg := &Registry{
		defs:   append([]ShapeDef(nil), defs...),
		byName: make(map[string]Molecule, len(defs)),
		byNum:  make(map[int]Molecule, len(defs)),
	}
	for _, def := range defs {
		m, err := Parse(def.Name, def.Orient, def.Expr)
		if err != nil {
			return nil, err
		}
		if _, dupe := reg.byName[def.Name]; dupe {
			return nil, errors.Wrapf(hexpack.ErrBadMolecule, "shape %q defined twice", def.Name)
		}
		if _, dupe := reg.byNum[def.Num]; dupe {
			return nil, errors.Wrapf(hexpack.ErrBadMolecule, "shape #%d defined twice", def.Num)
		}
		reg.byName[def.Name] = m
		reg.byNum[def.Num] = m
	}
	return reg, nil
}

var sShapes = func() *Registry {
	reg, err := NewRegistry(shapeDefs)
	if err != nil {
		panic(err)
	}
	return reg
}()

// Shapes returns the built-in shape registry.
func Shapes() *Registry {
	return sShapes
}

// Lookup finds a shape by name or by number.
func (reg *Registry) Lookup(nameOrNum string) (Molecule, error) {
	if m, ok := reg.byName[nameOrNum]; ok {
		return m, nil
	}
	if num, err := strconv.Atoi(nameOrNum); err == nil {
		if m, ok := reg.byNum[num]; ok {
			return m, nil
		}
	}
	return Molecule{}, errors.Wrapf(hexpack.ErrUnknownMolecule, "%q", nameOrNum)
}

// Defs lists the shape definitions in table order.
func (reg *Registry) Defs() []ShapeDef {
	return append([]ShapeDef(nil), reg.defs...)
}
