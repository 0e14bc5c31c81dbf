package lang

import (
	"errors"
	"strings"
	"testing"
)

// tree renders an expression in prefix notation so tests can assert the
// shape of the AST, not only its source text.
func tree(e Expr) string {
	switch e := e.(type) {
	case Infix:
		return "(" + e.Op.String() + " " + tree(e.LHS) + " " + tree(e.RHS) + ")"
	case Prefix:
		return "(" + e.Op.String() + " " + tree(e.Operand) + ")"
	case Parens:
		return "(group " + tree(e.Inner) + ")"
	case FctCall:
		part := []string{"call", e.Name}
		for _, a := range e.Args {
			part = append(part, tree(a))
		}

		return "(" + strings.Join(part, " ") + ")"
	default:
		return e.String()
	}
}

func TestParseExpr_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sub chain folds left", "1 - 2 - 3", "(- (- 1 2) 3)"},
		{"add mul", "1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"mul add", "1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"div mod chain", "8 / 4 % 3", "(% (/ 8 4) 3)"},
		{"pow chain folds left", "2 ^ 3 ^ 2", "(^ (^ 2 3) 2)"},
		{"pow over mul", "2 * 3 ^ 2", "(* 2 (^ 3 2))"},
		{"unary binds tighter than pow", "-a ^ 2", "(^ (- a) 2)"},
		{"nested unary", "- + 1", "(- (+ 1))"},
		{"parens", "(1 + 2) * 3", "(* (group (+ 1 2)) 3)"},
		{"call", "min(1, x) % 2", "(% (call min 1 x) 2)"},
		{"call without args", "f()", "(call f)"},
		{"nested call", "max(min(a, b), 3)", "(call max (call min a b) 3)"},
		{"string concat", `"a" + "b"`, `(+ "a" "b")`},
		{"array of exprs", "[1 + 1, a]", "[1 + 1, a]"},
		{"object keys", `{a: 1, "b c": [true, null]}`, `{a: 1, "b c": [true, null]}`},
		{"fraction", "1.25", "1.25"},
		{"comment", "1 // one\n + 2", "(+ 1 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseExpr(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := tree(e); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseProgram_Statements(t *testing.T) {
	source := `// leading comment
var a = 1 + 2 * 3;
var b = "x" + "y"; // trailing comment
  var c = [1, 2, a];
`

	prg, err := ParseProgram(t.Context(), source, WithFilename("main.jsl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []struct {
		name   string
		line   int
		column int
	}{
		{"a", 2, 1},
		{"b", 3, 1},
		{"c", 4, 3},
	}

	if len(prg.Stmts) != len(expected) {
		t.Fatalf("expected %d statements, got %d", len(expected), len(prg.Stmts))
	}

	for i, want := range expected {
		a, ok := prg.Stmts[i].(Assign)
		if !ok {
			t.Fatalf("statement %d: expected Assign, got %T", i, prg.Stmts[i])
		}

		if a.Name != want.name {
			t.Errorf("statement %d: expected name %q, got %q", i, want.name, a.Name)
		}

		if a.Pos.Line != want.line || a.Pos.Column != want.column {
			t.Errorf("statement %d: expected %d:%d, got %d:%d",
				i, want.line, want.column, a.Pos.Line, a.Pos.Column)
		}

		if a.Pos.Filename != "main.jsl" {
			t.Errorf("statement %d: expected filename main.jsl, got %q", i, a.Pos.Filename)
		}
	}
}

func TestParseProgram_Empty(t *testing.T) {
	for _, input := range []string{"", "  \n\t", "// nothing here\n"} {
		prg, err := ParseProgram(t.Context(), input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}

		if len(prg.Stmts) != 0 {
			t.Errorf("%q: expected no statements, got %d", input, len(prg.Stmts))
		}
	}
}

func TestParseProgram_StringRoundTrip(t *testing.T) {
	source := `var a = -(1 + 2) * 3 ^ 2 % 4;
var b = {x: "q\"uote", "not ident": [1.5, true, false, null], "null": 1};
var c = load_json("data.json");
var d = min(a, max(1, 2));
`

	prg, err := ParseProgram(t.Context(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := prg.String(); got != source {
		t.Fatalf("expected canonical source\n%s\ngot\n%s", source, got)
	}

	again, err := ParseProgram(t.Context(), prg.String())
	if err != nil {
		t.Fatalf("reparse: unexpected error: %v", err)
	}

	if again.String() != prg.String() {
		t.Errorf("expected reparse to be stable, got\n%s", again.String())
	}
}

func TestParseProgram_SyntaxError(t *testing.T) {
	// A zero line skips the position check where several tokens could be
	// blamed.
	tests := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{"missing value", "var a = 1;\nvar b = ;", 2, 9},
		{"missing semicolon", "var a = 1\nvar b = 2;", 2, 1},
		{"missing var", "a = 1;", 1, 1},
		{"keyword as name", "var true = 1;", 1, 5},
		{"trailing comma in array", "var a = [1,];", 0, 0},
		{"trailing comma in call", "var a = min(1,);", 0, 0},
		{"exponent notation", "var a = 1e5;", 1, 10},
		{"unterminated string", `var a = "abc;`, 1, 9},
		{"numeric object key", "var a = {1: 2};", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProgram(t.Context(), tt.input, WithFilename("bad.jsl"))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}

			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if tt.line > 0 && (serr.Pos.Line != tt.line || serr.Pos.Column != tt.column) {
				t.Errorf("expected position %d:%d, got %d:%d (%s)",
					tt.line, tt.column, serr.Pos.Line, serr.Pos.Column, serr.Message)
			}

			if serr.Pos.Filename != "bad.jsl" {
				t.Errorf("expected filename bad.jsl, got %q", serr.Pos.Filename)
			}
		})
	}
}

func TestSyntaxError_Snippet(t *testing.T) {
	_, err := ParseProgram(t.Context(), "var a = 1;\nvar b = ;\n", WithFilename("x.jsl"))

	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	msg := serr.Error()

	for _, want := range []string{
		"syntax error at x.jsl:2:9",
		`unexpected token ";"`,
		"  2 | var b = ;\n",
		"\n" + strings.Repeat(" ", 6+8) + "^",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"object", `{"n": 5, "arr": [1,2]}`, `{n: 5, arr: [1, 2]}`},
		{"negative number", "-3.5", "-3.5"},
		{"string", `"s"`, `"s"`},
		{"null", " null\n", "null"},
		{"bool", "false", "false"},
		{"nested", `{"a": {"b": [[]]}}`, `{a: {b: [[]]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, err := ParseLiteral(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := lit.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseLiteral_RejectsNonLiteral(t *testing.T) {
	for _, input := range []string{"a", "1 + 2", "(1)", "min(1, 2)", "var a = 1;", "", "[1] [2]"} {
		_, err := ParseLiteral(t.Context(), input)
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("%q: expected ErrSyntax, got %v", input, err)
		}
	}
}

func TestParseLiteral_NegativeNumber(t *testing.T) {
	lit, err := ParseLiteral(t.Context(), "-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, ok := lit.(NumLit); !ok || n != -2 {
		t.Errorf("expected NumLit(-2), got %#v", lit)
	}
}

func TestGrammar(t *testing.T) {
	g := Grammar()

	for _, want := range []string{"Program = ", "Statement = ", `"var"`, `"^"`} {
		if !strings.Contains(g, want) {
			t.Errorf("expected grammar to contain %q, got:\n%s", want, g)
		}
	}
}

func TestPrg_Print(t *testing.T) {
	prg, err := ParseProgram(t.Context(), "var a = -min(1, x) + [2];")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf strings.Builder
	if err := prg.Print(t.Context(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `Assign: a: line 1
  Infix: Add
    Prefix: Minus
      FctCall: min
        Num: 1
        Ident: x
    Array
      Num: 2
`

	if got := buf.String(); got != expected {
		t.Errorf("expected\n%s\ngot\n%s", expected, got)
	}
}
