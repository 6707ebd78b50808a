package molecule

import (
	"github.com/2x3systems/hexpack/hexpack"
	"github.com/2x3systems/hexpack/lattice"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// ShapeExpr is a shape written as its steps then its bead IDs, e.g. "R R B DR / 1 2 3 4"
type ShapeExpr struct {
	Steps []string `@Dir*`
	Beads []int    `"/" @Int+`
}

var sShapeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dir", Pattern: `UR|UL|DR|DL|R|L|B`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `/`},
	{Name: "whitespace", Pattern: `[ \t]+`},
})

var sParseShapeExpr = participle.MustBuild[ShapeExpr](
	participle.Lexer(sShapeLexer),
)

// Parse builds a molecule from a shape expression.
func Parse(name string, orient Orientation, shapeExpr string) (Molecule, error) {
	expr, err := sParseShapeExpr.ParseString(name, shapeExpr)
	if err != nil {
		return Molecule{}, errors.Wrap(hexpack.ErrBadMolecule, err.Error())
	}

	steps := make([]lattice.Direction, len(expr.Steps))
	for i, str := range expr.Steps {
		if steps[i], err = lattice.DirectionFromName(str); err != nil {
			return Molecule{}, err
		}
	}
	return New(name, orient, steps, expr.Beads)
}
