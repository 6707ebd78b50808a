package symmetry

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// FileExpr is a whole symmetry description: one member line per site, blank lines ignored.
type FileExpr struct {
	Lines []*LineExpr `( @@ | EOL )*`
}

// LineExpr is "<groupId> <nodeId> <isHole> <isMirrored> <orient1..6>"
type LineExpr struct {
	Group    int   `@Int`
	Node     int   `@Int`
	Hole     int   `@Int`
	Mirrored int   `@Int`
	Orients  []int `@Int* EOL`
}

var sSymLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "whitespace", Pattern: `[ \t]+`},
})

var sParseSymExpr = participle.MustBuild[FileExpr](
	participle.Lexer(sSymLexer),
)
