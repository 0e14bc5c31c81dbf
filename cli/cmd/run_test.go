package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/jslight/lang"
)

const program = `
var a = 3 + 4;
var b = "x" + "y";
var c = [1, 2, a];
`

func TestRun_Formats(t *testing.T) {
	paths := writeFiles(t, "main.jsl", program)

	tests := []struct {
		format   string
		expected string
	}{
		{"native", "vars (3):\n  a = 7\n  b = \"xy\"\n  c = [1, 2, 7]\n"},
		{"json", "{\n  \"a\": 7,\n  \"b\": \"xy\",\n  \"c\": [\n    1,\n    2,\n    7\n  ]\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := execute(t, "", "run", "--format", tt.format, paths[0])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if out != tt.expected {
				t.Errorf("expected\n%s\ngot\n%s", tt.expected, out)
			}
		})
	}

	out, err := execute(t, "", "run", "-F", "yaml", paths[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range []string{"a: 7", "b: xy", "c:"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in YAML output:\n%s", s, out)
		}
	}
}

func TestRun_DefaultCommand(t *testing.T) {
	paths := writeFiles(t, "main.jsl", "var a = 1;")

	out, err := execute(t, "", paths[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "vars (1):\n  a = 1\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRun_MultipleFiles(t *testing.T) {
	paths := writeFiles(t,
		"1.jsl", "var a = 1;",
		"2.jsl", "var b = a + 1; var a = 5;",
	)

	out, err := execute(t, "", "run", paths[0], paths[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expected := "vars (2):\n  a = 5\n  b = 2\n"; out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestRun_AST(t *testing.T) {
	paths := writeFiles(t, "main.jsl", "var a = 1+2;")

	out, err := execute(t, "", "run", "--ast", paths[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "parsed prg:\nvar a = 1 + 2;\n\nexecuting prg\nvars (1):\n  a = 3\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestRun_Query(t *testing.T) {
	paths := writeFiles(t, "main.jsl", program)

	out, err := execute(t, "", "run", "-q", "len(c) == 3 && b == 'xy'", paths[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "true\n" {
		t.Errorf("expected true, got %q", out)
	}

	_, err = execute(t, "", "run", "--query", "c +", paths[0])
	if !errors.Is(err, lang.ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

func TestRun_PlaceholderPrefix(t *testing.T) {
	paths := writeFiles(t, "main.jsl", "var a = -b;")

	out, err := execute(t, "", "run", "--placeholder-prefix", paths[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expected := "vars (1):\n  a = \"TODO\"\n"; out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}

	if _, err := execute(t, "", "run", paths[0]); !errors.Is(err, lang.ErrUndefinedVariable) {
		t.Errorf("expected ErrUndefinedVariable without placeholder, got %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	paths := writeFiles(t,
		"runtime.jsl", "var a = 1;\nvar b = nope;",
		"syntax.jsl", "var a = ;",
	)

	tests := []struct {
		name     string
		args     []string
		expected error
	}{
		{"no_files", []string{"run"}, ErrNoSource},
		{"runtime", []string{"run", paths[0]}, lang.ErrUndefinedVariable},
		{"syntax", []string{"run", paths[1]}, lang.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}

			if out != "" {
				t.Errorf("expected no output on error, got %q", out)
			}

			var e *lang.Error
			if len(tt.args) > 1 && errors.As(err, &e) {
				if v, ok := e.Attr("file"); !ok || v.String() != tt.args[1] {
					t.Errorf("expected file attribute %q, got %v", tt.args[1], v)
				}
			}
		})
	}
}
