package lang

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/alecthomas/participle/v2"
)

// ParseProgram parses source text into a program.
// Text that does not conform to the grammar yields a [*SyntaxError].
func ParseProgram(ctx context.Context, text string, opts ...Option) (*Prg, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.String("rule", "program"),
		slog.Int("source_bytes", len(text)),
	)

	tree, err := programParser.ParseString(cfg.filename, text)
	if err != nil {
		return nil, syntaxError(err, cfg.filename, text)
	}

	prg := &Prg{Stmts: make([]Stmt, len(tree.Stmts))}

	for i, s := range tree.Stmts {
		prg.Stmts[i] = Assign{
			Name:  s.Name,
			Value: s.Value.lower(),
			Pos: Position{
				Filename: s.Pos.Filename,
				Offset:   s.Pos.Offset,
				Line:     s.Pos.Line,
				Column:   s.Pos.Column,
			},
		}
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.String("rule", "program"),
		slog.Int("statements", len(prg.Stmts)),
	)

	return prg, nil
}

// ParseLiteral parses source text consisting of exactly one literal, such as
// the contents of a JSON-like data file. Anything else, including an
// identifier or an operator expression, yields a [*SyntaxError].
func ParseLiteral(ctx context.Context, text string, opts ...Option) (Literal, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.String("rule", "literal"),
		slog.Int("source_bytes", len(text)),
	)

	tree, err := literalParser.ParseString(cfg.filename, text)
	if err != nil {
		return nil, syntaxError(err, cfg.filename, text)
	}

	lit := tree.lower()

	cfg.logger.TraceContext(ctx, "parse complete", slog.String("rule", "literal"))

	return lit, nil
}

// ParseExpr parses source text consisting of exactly one expression.
func ParseExpr(ctx context.Context, text string, opts ...Option) (Expr, error) {
	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.String("rule", "expr"),
		slog.Int("source_bytes", len(text)),
	)

	tree, err := exprParser.ParseString(cfg.filename, text)
	if err != nil {
		return nil, syntaxError(err, cfg.filename, text)
	}

	e := tree.lower()

	cfg.logger.TraceContext(ctx, "parse complete", slog.String("rule", "expr"))

	return e, nil
}

func syntaxError(err error, filename, source string) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return ErrSyntax.Wrap(err).With(slog.String("file", filename))
	}

	pos := perr.Position()
	if pos.Filename == "" {
		pos.Filename = filename
	}

	return &SyntaxError{
		Pos: Position{
			Filename: pos.Filename,
			Offset:   pos.Offset,
			Line:     pos.Line,
			Column:   pos.Column,
		},
		Message: perr.Message(),
		Source:  source,
	}
}

// The lower methods convert the parse tree to the AST. The parser has
// already checked the shape of the tree, so they cannot fail.

func (s *sum) lower() Expr {
	e := s.Head.lower()
	for _, t := range s.Tail {
		e = infix(t.Op, e, t.Operand.lower())
	}

	return e
}

func (f *factor) lower() Expr {
	e := f.Head.lower()
	for _, t := range f.Tail {
		e = infix(t.Op, e, t.Operand.lower())
	}

	return e
}

func (p *power) lower() Expr {
	e := p.Head.lower()
	for _, t := range p.Tail {
		e = infix(t.Op, e, t.Operand.lower())
	}

	return e
}

func infix(sym string, lhs, rhs Expr) Expr {
	op, _ := parseInfixOp(sym)

	return Infix{Op: op, LHS: lhs, RHS: rhs}
}

func (u *unary) lower() Expr {
	if u.Primary != nil {
		return u.Primary.lower()
	}

	op := Plus
	if u.Op == "-" {
		op = Minus
	}

	return Prefix{Op: op, Operand: u.Operand.lower()}
}

func (p *primary) lower() Expr {
	switch {
	case p.Call != nil:
		args := make([]Expr, len(p.Call.Args))
		for i, a := range p.Call.Args {
			args[i] = a.lower()
		}

		return FctCall{Name: p.Call.Name, Args: args}

	case p.Literal != nil:
		return p.Literal.lower()

	case p.Ident != nil:
		return Ident{Name: *p.Ident}

	default:
		return Parens{Inner: p.Parens.lower()}
	}
}

func (l *literal) lower() Literal {
	switch {
	case l.Object != nil:
		fields := make([]FieldLit, len(l.Object.Fields))
		for i, f := range l.Object.Fields {
			name := ""
			if f.Name != nil {
				name = *f.Name
			} else {
				name = unquote(*f.Quoted)
			}

			fields[i] = FieldLit{Name: name, Value: f.Value.lower()}
		}

		return ObjectLit{Fields: fields}

	case l.Array != nil:
		elems := make([]Expr, len(l.Array.Elems))
		for i, e := range l.Array.Elems {
			elems[i] = e.lower()
		}

		return ArrayLit{Elems: elems}

	case l.Str != nil:
		return StrLit(unquote(*l.Str))

	case l.Number != nil:
		// The lexer only produces digits with an optional fraction.
		n, _ := strconv.ParseFloat(l.Number.Value, 64)
		if l.Number.Neg {
			n = -n
		}

		return NumLit(n)

	case l.Bool != nil:
		return BoolLit(*l.Bool == "true")

	default:
		return NullLit{}
	}
}

// unquote strips the surrounding double quotes of a String token. Escape
// sequences are kept as written.
func unquote(tok string) string {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return tok[1 : len(tok)-1]
	}

	return tok
}
