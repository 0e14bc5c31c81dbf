package lang

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run parses and runs source with a fresh Runner.
func run(t *testing.T, source string, opts ...Option) (*Runner, error) {
	t.Helper()

	prg, err := ParseProgram(t.Context(), source)
	if err != nil {
		t.Fatalf("parse: unexpected error: %v", err)
	}

	r := New(opts...)

	return r, r.Run(t.Context(), prg)
}

// eval evaluates a single expression with a fresh Runner.
func eval(t *testing.T, source string, opts ...Option) (Value, error) {
	t.Helper()

	e, err := ParseExpr(t.Context(), source)
	if err != nil {
		t.Fatalf("parse: unexpected error: %v", err)
	}

	return New(opts...).EvalExpr(t.Context(), e)
}

func TestRunner_EvalExpr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"left associative sub", "1 - 2 - 3", "-4"},
		{"precedence", "1 + 2 * 3", "7"},
		{"parens", "(1 + 2) * 3", "9"},
		{"left associative pow", "2 ^ 3 ^ 2", "64"},
		{"division", "7 / 2", "3.5"},
		{"modulo", "7 % 3", "1"},
		{"negative modulo", "-7 % 3", "-1"},
		{"fractional modulo", "5.5 % 2", "1.5"},
		{"division by zero", "1 / 0", "inf"},
		{"negative division by zero", "-1 / 0", "-inf"},
		{"zero by zero", "0 / 0", "NaN"},
		{"negation", "-(2 + 3)", "-5"},
		{"identity", "+4", "4"},
		{"double negation", "- -4", "4"},
		{"string concat", `"a" + "b"`, `"ab"`},
		{"string concat chain", `"a" + "b" + "c"`, `"abc"`},
		{"escapes kept", `"say \"hi\"" + "!"`, `"say \"hi\"!"`},
		{"min", "min(3, 5)", "3"},
		{"max", "max(3, 5)", "5"},
		{"min ignores NaN", "min(0 / 0, 2)", "2"},
		{"max ignores NaN", "max(2, 0 / 0)", "2"},
		{"nested call", "max(min(1, 2), 0.5)", "1"},
		{"array", "[1, 1 + 1, [3]]", "[1, 2, [3]]"},
		{"object", `{a: 1, "b": "x" + "y", c: {d: null}}`, `{"a": 1, "b": "xy", "c": {"d": null}}`},
		{"duplicate keys kept", "{a: 1, a: 2}", `{"a": 1, "a": 2}`},
		{"bool", "true", "true"},
		{"null", "null", "null"},
		{"empty array", "[]", "[]"},
		{"empty object", "{}", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := eval(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := v.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRunner_EvalExpr_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
		contains string
	}{
		{"undefined variable", "x", ErrUndefinedVariable, `"x"`},
		{"undefined in infix", "1 + y", ErrUndefinedVariable, `"y"`},
		{"string sub", `"a" - "b"`, ErrInvalidStringOperator, `"-"`},
		{"string mul", `"a" * "b"`, ErrInvalidStringOperator, `"*"`},
		{"num plus string", `1 + "x"`, ErrTypeMismatch, "number + string"},
		{"string plus num", `"x" + 1`, ErrTypeMismatch, "string + number"},
		{"bool arithmetic", "true + true", ErrTypeMismatch, "bool + bool"},
		{"null arithmetic", "null * 2", ErrTypeMismatch, "null * number"},
		{"array concat", "[1] + [2]", ErrTypeMismatch, "array + array"},
		{"object arithmetic", "{} - 1", ErrTypeMismatch, "object - number"},
		{"unknown function", "nope(1)", ErrUnknownFunction, `"nope"`},
		{"arity too few", "min(1)", ErrArityMismatch, "min expects 2 arguments, got 1"},
		{"arity too many", "max(1, 2, 3)", ErrArityMismatch, "max expects 2 arguments, got 3"},
		{"min string", `min("a", 1)`, ErrTypeMismatch, "(string, number)"},
		{"load_json number", "load_json(1)", ErrTypeMismatch, "(number)"},
		{"negate string", `-"a"`, ErrInvalidOperand, "-string"},
		{"error inside array", "[1, z]", ErrUndefinedVariable, `"z"`},
		{"error inside object", "{a: 1 - null}", ErrTypeMismatch, "number - null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval(t, tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}

			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error to contain %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestRunner_ArityMismatch_Attrs(t *testing.T) {
	_, err := eval(t, "min(1)")

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error, got %T", err)
	}

	for key, want := range map[string]string{"name": "min", "expected": "2", "got": "1"} {
		v, ok := ee.Attr(key)
		if !ok {
			t.Errorf("expected attribute %q", key)

			continue
		}

		if v.String() != want {
			t.Errorf("expected %s=%s, got %s", key, want, v.String())
		}
	}
}

func TestRunner_UnknownFunction_EvaluatesArgsFirst(t *testing.T) {
	// Arguments are evaluated before the function is looked up.
	_, err := eval(t, "nope(undefined_arg)")
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("expected ErrUndefinedVariable, got %v", err)
	}
}

var oneDotOne = float32(1.1)

func TestEvalInfix_Pow(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs float64
		expected float64
	}{
		{"integers", 2, 3, float64(float32(8))},
		{"narrowed base", 1.1, 2, float64(oneDotOne * oneDotOne)},
		{"truncated exponent", 2, 2.9, 4},
		{"negative truncated exponent", 2, -1.5, 0.5},
		{"zero exponent", 5, 0, 1},
		{"NaN exponent", 3, math.NaN(), 1},
		{"negative base", -2, 3, -8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := EvalInfix(Pow, Num(tt.lhs), Num(tt.rhs))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := float64(v.(Num)); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	// 1.1^2 in 64-bit precision differs from the narrowed result.
	v, _ := EvalInfix(Pow, Num(1.1), Num(2))
	if float64(v.(Num)) == 1.1*1.1 {
		t.Error("expected 32-bit narrowing to change the result of 1.1^2")
	}
}

func TestEvalInfix_Numeric(t *testing.T) {
	tests := []struct {
		op       InfixOp
		lhs, rhs float64
		expected float64
	}{
		{Add, 1.5, 2.25, 3.75},
		{Sub, 1, 3, -2},
		{Mul, -2, 4, -8},
		{Div, 1, 4, 0.25},
		{Modulo, 10, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.op.Name(), func(t *testing.T) {
			v, err := EvalInfix(tt.op, Num(tt.lhs), Num(tt.rhs))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := float64(v.(Num)); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRunner_Run_EndToEnd(t *testing.T) {
	r, err := run(t, `
var a = 1 + 2 * 3;
var b = "x" + "y";
var c = [1, 2, a];
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{`a = 7`, `b = "xy"`, `c = [1, 2, 7]`}

	bindings := r.Bindings()
	if len(bindings) != len(expected) {
		t.Fatalf("expected %d bindings, got %d", len(expected), len(bindings))
	}

	for i, b := range bindings {
		if b.String() != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], b.String())
		}
	}
}

func TestRunner_Run_Rebinding(t *testing.T) {
	r, err := run(t, `var x = 1; var y = x; var x = "two"; var z = x + "!";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]string{"x": `"two"`, "y": "1", "z": `"two!"`}
	for name, want := range tests {
		v, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("expected %s to be bound", name)
		}

		if v.String() != want {
			t.Errorf("expected %s = %s, got %s", name, want, v.String())
		}
	}

	if r.Len() != 3 {
		t.Errorf("expected 3 bindings, got %d", r.Len())
	}
}

func TestRunner_Run_StopsAtFirstError(t *testing.T) {
	r, err := run(t, `var a = 1;
var b = a + missing;
var c = 3;`)
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected ErrUndefinedVariable, got %v", err)
	}

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("expected *Error, got %T", err)
	}

	if v, ok := ee.Attr("statement"); !ok || v.String() != "b" {
		t.Errorf("expected statement attribute b, got %v", v)
	}

	if v, ok := ee.Attr("pos"); !ok || v.String() != "2:1" {
		t.Errorf("expected pos attribute 2:1, got %v", v)
	}

	if _, ok := r.Lookup("a"); !ok {
		t.Error("expected earlier binding a to remain")
	}

	if _, ok := r.Lookup("b"); ok {
		t.Error("expected failed binding b to be absent")
	}

	if _, ok := r.Lookup("c"); ok {
		t.Error("expected later binding c to be absent")
	}
}

func TestRunner_RunStatement_NoMutationOnError(t *testing.T) {
	r := New()

	if err := r.RunStatement(t.Context(), Assign{Name: "a", Value: NumLit(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.RunStatement(t.Context(), Assign{
		Name:  "a",
		Value: Infix{Op: Sub, LHS: StrLit("x"), RHS: StrLit("y")},
	})
	if !errors.Is(err, ErrInvalidStringOperator) {
		t.Fatalf("expected ErrInvalidStringOperator, got %v", err)
	}

	if v, _ := r.Lookup("a"); v.String() != "1" {
		t.Errorf("expected a to keep value 1, got %s", v)
	}
}

func TestRunner_PrefixPlaceholder(t *testing.T) {
	tests := []struct {
		input string
	}{
		{"-1"},
		{"+1"},
		{"-undefined_variable"},
		{`-"str"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := eval(t, tt.input, WithPrefixPlaceholder(true))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !Equal(v, Str("TODO")) {
				t.Errorf(`expected "TODO", got %s`, v)
			}
		})
	}
}

func TestRunner_WithBuiltins(t *testing.T) {
	builtins := DefaultBuiltins()
	builtins["twice"] = Builtin{
		Arity:  1,
		Params: []string{"n"},
		Func: func(_ context.Context, _ *Runner, args []Value) (Value, error) {
			n, ok := args[0].(Num)
			if !ok {
				return nil, ErrTypeMismatch
			}

			return n * 2, nil
		},
	}

	v, err := eval(t, "twice(min(4, 9))", WithBuiltins(builtins))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.String() != "8" {
		t.Errorf("expected 8, got %s", v)
	}

	if _, err := eval(t, "twice(1)"); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("expected ErrUnknownFunction without custom builtins, got %v", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

func TestBuiltin_LoadJSON(t *testing.T) {
	path := writeFile(t, "data.json", `{"n": 5, "arr": [1,2]}`)

	r, err := run(t, `var d = load_json("`+path+`");`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, _ := r.Lookup("d")
	if got, want := d.String(), `{"n": 5, "arr": [1, 2]}`; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestBuiltin_LoadJSON_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")

		_, err := run(t, `var d = load_json("`+path+`");`)
		if !errors.Is(err, ErrFile) {
			t.Fatalf("expected ErrFile, got %v", err)
		}

		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected cause fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("malformed content", func(t *testing.T) {
		path := writeFile(t, "bad.json", "{\"n\": }")

		_, err := run(t, `var d = load_json("`+path+`");`)
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("expected ErrSyntax, got %v", err)
		}

		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("expected *SyntaxError, got %T", err)
		}

		if serr.Pos.Filename != path {
			t.Errorf("expected syntax error in %s, got %s", path, serr.Pos.Filename)
		}
	})

	t.Run("not a literal", func(t *testing.T) {
		path := writeFile(t, "expr.json", "1 + 2")

		_, err := run(t, `var d = load_json("`+path+`");`)
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("expected ErrSyntax, got %v", err)
		}
	})
}

func TestRunner_Bindings_Sorted(t *testing.T) {
	r, err := run(t, `var zeta = 1; var alpha = 2; var Mid = 3;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, b := range r.Bindings() {
		names = append(names, b.Name)
	}

	if got := strings.Join(names, ","); got != "Mid,alpha,zeta" {
		t.Errorf("expected Mid,alpha,zeta, got %s", got)
	}

	r.Reset()

	if r.Len() != 0 {
		t.Errorf("expected empty environment after Reset, got %d", r.Len())
	}
}

func BenchmarkRunner_Run(b *testing.B) {
	prg, err := ParseProgram(b.Context(), `
var a = 1 + 2 * 3 - 4 / 5 % 6;
var b = "x" + "y" + "z";
var c = [a, b, {k: max(a, 10), l: min(a, -1)}];
var d = (a + 1) ^ 2;
`)
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}

	b.ReportAllocs()

	for b.Loop() {
		if err := New().Run(b.Context(), prg); err != nil {
			b.Fatalf("run error: %v", err)
		}
	}
}
