package lang

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The grammar is declared as participle struct tags. Each binary precedence
// level is a head operand followed by a flat list of (operator, operand)
// pairs; the list is folded left into [Infix] nodes when lowered to the AST,
// so every chain, including "^", is left-associative.

var tokens = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "Keyword", Pattern: `(?:var|true|false|null)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/%^=;,:(){}\[\]]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type program struct {
	Stmts []*statement `@@*`
}

type statement struct {
	Pos lexer.Position

	Name  string `"var" @Ident "="`
	Value *sum   `@@ ";"`
}

type sum struct {
	Head *factor  `@@`
	Tail []*sumOp `@@*`
}

type sumOp struct {
	Op      string  `@("+" | "-")`
	Operand *factor `@@`
}

type factor struct {
	Head *power      `@@`
	Tail []*factorOp `@@*`
}

type factorOp struct {
	Op      string `@("*" | "/" | "%")`
	Operand *power `@@`
}

type power struct {
	Head *unary     `@@`
	Tail []*powerOp `@@*`
}

type powerOp struct {
	Op      string `@"^"`
	Operand *unary `@@`
}

type unary struct {
	Op      string   `  ( @("+" | "-")`
	Operand *unary   `    @@ )`
	Primary *primary `| @@`
}

type primary struct {
	Call    *call    `  @@`
	Literal *literal `| @@`
	Ident   *string  `| @Ident`
	Parens  *sum     `| "(" @@ ")"`
}

type call struct {
	Name string `@Ident "("`
	Args []*sum `( @@ ( "," @@ )* )? ")"`
}

type literal struct {
	Object *object  `  @@`
	Array  *array   `| @@`
	Str    *string  `| @String`
	Number *number  `| @@`
	Bool   *string  `| @("true" | "false")`
	Null   bool     `| @"null"`
}

type number struct {
	Neg   bool   `@"-"?`
	Value string `@Number`
}

type object struct {
	Fields []*field `"{" ( @@ ( "," @@ )* )? "}"`
}

type field struct {
	Name   *string `( @Ident`
	Quoted *string `| @String ) ":"`
	Value  *sum    `@@`
}

type array struct {
	Elems []*sum `"[" ( @@ ( "," @@ )* )? "]"`
}

var parserOptions = []participle.Option{
	participle.Lexer(tokens),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
}

var (
	programParser = participle.MustBuild[program](parserOptions...)
	literalParser = participle.MustBuild[literal](parserOptions...)
	exprParser    = participle.MustBuild[sum](parserOptions...)
)

// Grammar returns the EBNF of the program grammar.
func Grammar() string {
	return programParser.String()
}
