package lang

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"
)

// BuiltinFunc implements a builtin function. It receives the evaluated
// arguments in call order; their count has already been checked against
// the declared arity.
type BuiltinFunc func(ctx context.Context, r *Runner, args []Value) (Value, error)

// Builtin is an entry of the builtin function registry.
type Builtin struct {
	Arity  int
	Params []string // Parameter names, for signatures
	Doc    string
	Func   BuiltinFunc
}

// Builtins maps function names to their implementation.
type Builtins map[string]Builtin

// DefaultBuiltins returns a new registry holding the standard functions:
//
//	min(a, b)        smaller of two numbers
//	max(a, b)        larger of two numbers
//	load_json(path)  value of the literal stored in a file
func DefaultBuiltins() Builtins {
	return Builtins{
		"min": {
			Arity:  2,
			Params: []string{"a", "b"},
			Doc:    "smaller of two numbers",
			Func:   numeric("min", minNum),
		},
		"max": {
			Arity:  2,
			Params: []string{"a", "b"},
			Doc:    "larger of two numbers",
			Func:   numeric("max", maxNum),
		},
		"load_json": {
			Arity:  1,
			Params: []string{"path"},
			Doc:    "value of the literal stored in a file",
			Func:   loadJSON,
		},
	}
}

// Names returns the registered function names in sorted order.
func (b Builtins) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Signature returns the call signature of the named function, e.g.
// "min(a, b)".
func (b Builtins) Signature(name string) (string, bool) {
	fn, ok := b[name]
	if !ok {
		return "", false
	}

	params := fn.Params
	if len(params) != fn.Arity {
		params = make([]string, fn.Arity)
		for i := range params {
			params[i] = fmt.Sprintf("arg%d", i+1)
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", true
}

func numeric(name string, fn func(a, b float64) float64) BuiltinFunc {
	return func(_ context.Context, _ *Runner, args []Value) (Value, error) {
		a, aok := args[0].(Num)
		b, bok := args[1].(Num)

		if !aok || !bok {
			return nil, ErrTypeMismatch.Wrap(
				fmt.Errorf("%s expects (number, number), got (%s, %s)",
					name, args[0].Kind(), args[1].Kind()),
			).With(
				slog.String("function", name),
				slog.String("lhs", args[0].Kind().String()),
				slog.String("rhs", args[1].Kind().String()),
			)
		}

		return Num(fn(float64(a), float64(b))), nil
	}
}

// minNum and maxNum follow IEEE 754 minNum/maxNum: if exactly one operand
// is NaN, the other is returned.
func minNum(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return math.Min(a, b)
	}
}

func maxNum(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return math.Max(a, b)
	}
}

// loadJSON reads the file named by its argument, relative to the working
// directory, parses the whole content as a single literal, and evaluates it.
func loadJSON(ctx context.Context, r *Runner, args []Value) (Value, error) {
	path, ok := args[0].(Str)
	if !ok {
		return nil, ErrTypeMismatch.Wrap(
			fmt.Errorf("load_json expects (string), got (%s)", args[0].Kind()),
		).With(slog.String("function", "load_json"))
	}

	name := path.Text()

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, ErrFile.Wrap(err).With(slog.String("path", name))
	}

	r.logger.TraceContext(ctx, "read file",
		slog.String("path", name),
		slog.Int("bytes", len(data)),
	)

	lit, err := ParseLiteral(ctx, string(data),
		WithFilename(name),
		WithLogger(r.logger),
	)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", name))
	}

	return r.EvalLiteral(ctx, lit)
}
