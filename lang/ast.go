package lang

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Position identifies a location in source text.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// String returns "file:line:column", omitting the file name when unknown.
func (p Position) String() string {
	loc := strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	if p.Filename == "" {
		return loc
	}

	return p.Filename + ":" + loc
}

// Prg is a parsed program: an ordered sequence of statements.
// A Prg is never modified after parsing, so it may be shared between
// concurrent runs.
type Prg struct {
	Stmts []Stmt
}

// Stmt is a statement of a program.
type Stmt interface {
	fmt.Stringer
	stmt()
}

// Assign binds the value of an expression to a variable name.
type Assign struct {
	Name  string
	Value Expr
	Pos   Position
}

func (Assign) stmt() {}

// Expr is an expression node.
//
// The variants are [Ident], [Infix], [Prefix], [Parens], [FctCall], and
// every [Literal].
type Expr interface {
	fmt.Stringer
	expr()
}

// Literal is an expression node denoting a constant value form. Composite
// literals contain unevaluated element expressions.
//
// The variants are [ObjectLit], [ArrayLit], [StrLit], [NumLit], [BoolLit],
// and [NullLit].
type Literal interface {
	Expr
	literal()
}

// Ident is a variable reference.
type Ident struct {
	Name string
}

// Infix is a binary operation.
type Infix struct {
	Op  InfixOp
	LHS Expr
	RHS Expr
}

// Prefix is a unary operation.
type Prefix struct {
	Op      PrefixOp
	Operand Expr
}

// Parens groups an expression. It has no effect on evaluation.
type Parens struct {
	Inner Expr
}

// FctCall is a call to a builtin function with positional arguments.
type FctCall struct {
	Name string
	Args []Expr
}

// ObjectLit is an object literal with fields in source order.
type ObjectLit struct {
	Fields []FieldLit
}

// FieldLit is a single name: value pair of an [ObjectLit].
type FieldLit struct {
	Name  string
	Value Expr
}

// ArrayLit is an array literal.
type ArrayLit struct {
	Elems []Expr
}

// StrLit is a string literal. It holds the text between the quotes exactly
// as written, escape sequences included.
type StrLit string

// NumLit is a number literal.
type NumLit float64

// BoolLit is a boolean literal.
type BoolLit bool

// NullLit is the null literal.
type NullLit struct{}

func (Ident) expr()     {}
func (Infix) expr()     {}
func (Prefix) expr()    {}
func (Parens) expr()    {}
func (FctCall) expr()   {}
func (ObjectLit) expr() {}
func (ArrayLit) expr()  {}
func (StrLit) expr()    {}
func (NumLit) expr()    {}
func (BoolLit) expr()   {}
func (NullLit) expr()   {}

func (ObjectLit) literal() {}
func (ArrayLit) literal()  {}
func (StrLit) literal()    {}
func (NumLit) literal()    {}
func (BoolLit) literal()   {}
func (NullLit) literal()   {}

// InfixOp is a binary operator.
type InfixOp int

const (
	Add InfixOp = iota
	Sub
	Mul
	Div
	Pow
	Modulo
)

var infixSymbol = [...]string{
	Add:    "+",
	Sub:    "-",
	Mul:    "*",
	Div:    "/",
	Pow:    "^",
	Modulo: "%",
}

// String returns the operator's source symbol.
func (op InfixOp) String() string {
	if op < 0 || int(op) >= len(infixSymbol) {
		return "InfixOp(" + strconv.Itoa(int(op)) + ")"
	}

	return infixSymbol[op]
}

// Name returns the operator's name, e.g. "Add".
func (op InfixOp) Name() string {
	switch op {
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Pow:
		return "Pow"
	case Modulo:
		return "Modulo"
	default:
		return op.String()
	}
}

func parseInfixOp(s string) (InfixOp, bool) {
	for op, sym := range infixSymbol {
		if sym == s {
			return InfixOp(op), true
		}
	}

	return 0, false
}

// PrefixOp is a unary operator.
type PrefixOp int

const (
	Plus PrefixOp = iota
	Minus
)

// String returns the operator's source symbol.
func (op PrefixOp) String() string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	default:
		return "PrefixOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// Name returns the operator's name, e.g. "Minus".
func (op PrefixOp) Name() string {
	switch op {
	case Plus:
		return "Plus"
	case Minus:
		return "Minus"
	default:
		return op.String()
	}
}

// String renders the program as canonical source, one statement per line.
func (p *Prg) String() string {
	var buf strings.Builder

	for _, s := range p.Stmts {
		buf.WriteString(s.String())
		buf.WriteByte('\n')
	}

	return buf.String()
}

func (a Assign) String() string {
	return "var " + a.Name + " = " + a.Value.String() + ";"
}

func (e Ident) String() string { return e.Name }

func (e Infix) String() string {
	return e.LHS.String() + " " + e.Op.String() + " " + e.RHS.String()
}

func (e Prefix) String() string { return e.Op.String() + e.Operand.String() }

func (e Parens) String() string { return "(" + e.Inner.String() + ")" }

func (e FctCall) String() string {
	return e.Name + "(" + joinExprs(e.Args) + ")"
}

func (e ObjectLit) String() string {
	part := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		part[i] = f.Name + ": " + f.Value.String()
		if !isIdent(f.Name) {
			part[i] = `"` + f.Name + `": ` + f.Value.String()
		}
	}

	return "{" + strings.Join(part, ", ") + "}"
}

func (e ArrayLit) String() string { return "[" + joinExprs(e.Elems) + "]" }

func (e StrLit) String() string { return `"` + string(e) + `"` }

func (e NumLit) String() string { return formatNum(float64(e)) }

func (e BoolLit) String() string { return strconv.FormatBool(bool(e)) }

func (NullLit) String() string { return "null" }

func joinExprs(exprs []Expr) string {
	part := make([]string, len(exprs))
	for i, e := range exprs {
		part[i] = e.String()
	}

	return strings.Join(part, ", ")
}

// isIdent reports whether s can be written as a bare object key.
func isIdent(s string) bool {
	if s == "" || keywords[s] {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

var keywords = map[string]bool{
	"var": true, "true": true, "false": true, "null": true,
}

// Keywords returns the reserved words of the language.
func Keywords() []string {
	return []string{"false", "null", "true", "var"}
}

// Print writes an indented tree representation of the program to w.
func (p *Prg) Print(_ context.Context, w io.Writer) error {
	t := &treeWriter{w: w}

	for _, s := range p.Stmts {
		if a, ok := s.(Assign); ok {
			t.line(0, "Assign", a.Name, "line "+strconv.Itoa(a.Pos.Line))
			printExpr(t, a.Value, 1)
		}
	}

	return t.err
}

// treeWriter writes one node per line, joining items with ": ". After the
// first write error every further line is dropped.
type treeWriter struct {
	w   io.Writer
	err error
}

func (t *treeWriter) line(depth int, item ...string) {
	if t.err != nil {
		return
	}

	_, t.err = io.WriteString(
		t.w, strings.Repeat("  ", depth)+strings.Join(item, ": ")+"\n",
	)
}

func printExpr(t *treeWriter, e Expr, depth int) {
	switch e := e.(type) {
	case Ident:
		t.line(depth, "Ident", e.Name)

	case Infix:
		t.line(depth, "Infix", e.Op.Name())
		printExpr(t, e.LHS, depth+1)
		printExpr(t, e.RHS, depth+1)

	case Prefix:
		t.line(depth, "Prefix", e.Op.Name())
		printExpr(t, e.Operand, depth+1)

	case Parens:
		t.line(depth, "Parens")
		printExpr(t, e.Inner, depth+1)

	case FctCall:
		t.line(depth, "FctCall", e.Name)

		for _, arg := range e.Args {
			printExpr(t, arg, depth+1)
		}

	case ObjectLit:
		t.line(depth, "Object")

		for _, f := range e.Fields {
			t.line(depth+1, "Field", strconv.Quote(f.Name))
			printExpr(t, f.Value, depth+2)
		}

	case ArrayLit:
		t.line(depth, "Array")

		for _, elem := range e.Elems {
			printExpr(t, elem, depth+1)
		}

	case StrLit:
		t.line(depth, "Str", e.String())

	case NumLit:
		t.line(depth, "Num", e.String())

	case BoolLit:
		t.line(depth, "Bool", e.String())

	case NullLit:
		t.line(depth, "Null")
	}
}
