package lang

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
)

// Runner executes programs against a variable environment.
//
// A Runner owns its environment exclusively and is not safe for concurrent
// use. Programs are immutable and may be run by several Runners at once.
type Runner struct {
	config

	vars map[string]Value
}

// Binding is a single variable name and its value.
type Binding struct {
	Name  string
	Value Value
}

// String returns "name = value".
func (b Binding) String() string { return b.Name + " = " + b.Value.String() }

// New returns a Runner with an empty environment.
func New(opts ...Option) *Runner {
	r := &Runner{
		config: makeConfig(opts...),
		vars:   make(map[string]Value),
	}

	if r.builtins == nil {
		r.builtins = DefaultBuiltins()
	}

	return r
}

// Run executes the statements of prg in order. The first failing statement
// aborts the run; bindings made by earlier statements remain in place.
func (r *Runner) Run(ctx context.Context, prg *Prg) error {
	r.logger.TraceContext(ctx, "run start", slog.Int("statements", len(prg.Stmts)))

	for _, stmt := range prg.Stmts {
		if err := r.RunStatement(ctx, stmt); err != nil {
			return err
		}
	}

	r.logger.TraceContext(ctx, "run complete", slog.Int("bindings", len(r.vars)))

	return nil
}

// RunStatement executes a single statement. On error the environment is
// left unchanged.
func (r *Runner) RunStatement(ctx context.Context, stmt Stmt) error {
	switch s := stmt.(type) {
	case Assign:
		r.logger.TraceContext(ctx, "statement",
			slog.String("name", s.Name),
			slog.Int("line", s.Pos.Line),
		)

		v, err := r.EvalExpr(ctx, s.Value)
		if err != nil {
			attrs := []slog.Attr{slog.String("statement", s.Name)}
			if s.Pos.Line > 0 {
				attrs = append(attrs, slog.String("pos", s.Pos.String()))
			}

			return WrapError(err).With(attrs...)
		}

		r.vars[s.Name] = v

		return nil

	default:
		return fmt.Errorf("unsupported statement %T", stmt)
	}
}

// EvalExpr evaluates an expression against the current environment.
// Sub-expressions are evaluated left to right.
func (r *Runner) EvalExpr(ctx context.Context, expr Expr) (Value, error) {
	switch e := expr.(type) {
	case Literal:
		return r.EvalLiteral(ctx, e)

	case Ident:
		v, ok := r.vars[e.Name]
		if !ok {
			return nil, ErrUndefinedVariable.Wrap(
				fmt.Errorf("%q", e.Name),
			).With(slog.String("name", e.Name))
		}

		return v, nil

	case Infix:
		lhs, err := r.EvalExpr(ctx, e.LHS)
		if err != nil {
			return nil, err
		}

		rhs, err := r.EvalExpr(ctx, e.RHS)
		if err != nil {
			return nil, err
		}

		return EvalInfix(e.Op, lhs, rhs)

	case Prefix:
		return r.evalPrefix(ctx, e)

	case Parens:
		return r.EvalExpr(ctx, e.Inner)

	case FctCall:
		return r.call(ctx, e)

	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

// EvalLiteral lowers a literal to a value, evaluating the elements of
// arrays and the fields of objects in order.
func (r *Runner) EvalLiteral(ctx context.Context, lit Literal) (Value, error) {
	switch l := lit.(type) {
	case ObjectLit:
		obj := make(Object, len(l.Fields))

		for i, f := range l.Fields {
			v, err := r.EvalExpr(ctx, f.Value)
			if err != nil {
				return nil, err
			}

			obj[i] = Field{Name: f.Name, Value: v}
		}

		return obj, nil

	case ArrayLit:
		arr := make(Array, len(l.Elems))

		for i, e := range l.Elems {
			v, err := r.EvalExpr(ctx, e)
			if err != nil {
				return nil, err
			}

			arr[i] = v
		}

		return arr, nil

	case StrLit:
		return Str(l), nil

	case NumLit:
		return Num(l), nil

	case BoolLit:
		return Bool(l), nil

	case NullLit:
		return Null{}, nil

	default:
		return nil, fmt.Errorf("unsupported literal %T", lit)
	}
}

func (r *Runner) evalPrefix(ctx context.Context, e Prefix) (Value, error) {
	if r.prefixPlaceholder {
		return Str("TODO"), nil
	}

	v, err := r.EvalExpr(ctx, e.Operand)
	if err != nil {
		return nil, err
	}

	n, ok := v.(Num)
	if !ok {
		return nil, ErrInvalidOperand.Wrap(
			fmt.Errorf("%s%s", e.Op, v.Kind()),
		).With(
			slog.String("op", e.Op.Name()),
			slog.String("operand", v.Kind().String()),
		)
	}

	if e.Op == Minus {
		return -n, nil
	}

	return n, nil
}

func (r *Runner) call(ctx context.Context, e FctCall) (Value, error) {
	args := make([]Value, len(e.Args))

	for i, a := range e.Args {
		v, err := r.EvalExpr(ctx, a)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	fn, ok := r.builtins[e.Name]
	if !ok {
		return nil, ErrUnknownFunction.Wrap(
			fmt.Errorf("%q", e.Name),
		).With(slog.String("name", e.Name))
	}

	if len(args) != fn.Arity {
		return nil, ErrArityMismatch.Wrap(
			fmt.Errorf("%s expects %d arguments, got %d", e.Name, fn.Arity, len(args)),
		).With(
			slog.String("name", e.Name),
			slog.Int("expected", fn.Arity),
			slog.Int("got", len(args)),
		)
	}

	r.logger.TraceContext(ctx, "builtin call",
		slog.String("name", e.Name),
		slog.Int("args", len(args)),
	)

	return fn.Func(ctx, r, args)
}

// EvalInfix applies a binary operator to two values. The operation is
// chosen by the pair of operand types:
//
//   - two numbers: IEEE 754 arithmetic; "^" is computed in 32-bit
//     precision with the exponent truncated to an integer
//   - two strings: only "+", which concatenates
//   - anything else: [ErrTypeMismatch]
func EvalInfix(op InfixOp, lhs, rhs Value) (Value, error) {
	switch l := lhs.(type) {
	case Num:
		if r, ok := rhs.(Num); ok {
			return evalNum(op, float64(l), float64(r)), nil
		}

	case Str:
		if r, ok := rhs.(Str); ok {
			if op != Add {
				return nil, ErrInvalidStringOperator.Wrap(
					fmt.Errorf("%q", op.String()),
				).With(slog.String("op", op.Name()))
			}

			return l + r, nil
		}
	}

	return nil, ErrTypeMismatch.Wrap(
		fmt.Errorf("%s %s %s", lhs.Kind(), op, rhs.Kind()),
	).With(
		slog.String("op", op.Name()),
		slog.String("lhs", lhs.Kind().String()),
		slog.String("rhs", rhs.Kind().String()),
	)
}

func evalNum(op InfixOp, a, b float64) Num {
	switch op {
	case Add:
		return Num(a + b)
	case Sub:
		return Num(a - b)
	case Mul:
		return Num(a * b)
	case Div:
		return Num(a / b)
	case Pow:
		return Num(powi(float32(a), saturateInt32(b)))
	case Modulo:
		return Num(math.Mod(a, b))
	default:
		return Num(math.NaN())
	}
}

// powi raises x to an integer power by repeated squaring in 32-bit
// precision. A negative exponent yields the reciprocal.
func powi(x float32, n int32) float64 {
	recip := n < 0
	r := float32(1)

	for {
		if n&1 != 0 {
			r *= x
		}

		n /= 2
		if n == 0 {
			break
		}

		x *= x
	}

	if recip {
		r = 1 / r
	}

	return float64(r)
}

// saturateInt32 truncates f toward zero, clamping to the int32 range.
// NaN converts to zero.
func saturateInt32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

// Lookup returns the value bound to name.
func (r *Runner) Lookup(name string) (Value, bool) {
	v, ok := r.vars[name]

	return v, ok
}

// Len returns the number of bound variables.
func (r *Runner) Len() int { return len(r.vars) }

// Bindings returns a snapshot of the environment sorted by name.
func (r *Runner) Bindings() []Binding {
	out := make([]Binding, 0, len(r.vars))
	for name, v := range r.vars {
		out = append(out, Binding{Name: name, Value: v})
	}

	slices.SortFunc(out, func(a, b Binding) int { return strings.Compare(a.Name, b.Name) })

	return out
}

// Native returns the environment converted with [Native].
func (r *Runner) Native() map[string]any {
	out := make(map[string]any, len(r.vars))
	for name, v := range r.vars {
		out[name] = Native(v)
	}

	return out
}

// Builtins returns the runner's builtin function registry.
func (r *Runner) Builtins() Builtins { return r.builtins }

// Reset removes every binding.
func (r *Runner) Reset() { clear(r.vars) }
