package repl

import (
	"strings"

	"github.com/ardnew/jslight/lang"
)

// functionCall describes the innermost call whose argument list contains
// the cursor.
type functionCall struct {
	name     string
	argIndex int // 0-based index of the argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor.
// Parentheses and commas inside string literals and nested brackets are
// ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	type frame struct {
		open  byte
		name  string
		index int
	}

	var (
		stack  []frame
		quoted bool
	)

	for i := 0; i < cursor; i++ {
		c := input[i]

		if quoted {
			switch c {
			case '\\':
				i++
			case '"':
				quoted = false
			}

			continue
		}

		switch c {
		case '"':
			quoted = true

		case '(', '[', '{':
			name := ""
			if c == '(' {
				name, _, _ = wordBounds(input[:i], i)
			}

			stack = append(stack, frame{open: c, name: name})

		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].index++
			}
		}
	}

	// The argument index counts commas of the call itself, so brackets
	// opened inside an argument are skipped.
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.open != '(' {
			continue
		}

		if f.name == "" {
			// Grouping parentheses.
			return functionCall{}
		}

		return functionCall{name: f.name, argIndex: f.index, inCall: true}
	}

	return functionCall{}
}

// renderSignatureHint renders the signature of the named builtin with the
// parameter under the cursor highlighted. It returns "" if name is not a
// builtin.
func renderSignatureHint(builtins lang.Builtins, name string, argIndex int) string {
	fn, ok := builtins[name]
	if !ok {
		return ""
	}

	sig, _ := builtins.Signature(name)
	params := sig[strings.IndexByte(sig, '(')+1 : len(sig)-1]

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	if params != "" {
		for i, p := range strings.Split(params, ", ") {
			if i > 0 {
				b.WriteString(signatureStyle.Render(", "))
			}

			if i == argIndex {
				b.WriteString(currentParamStyle.Render(p))
			} else {
				b.WriteString(signatureStyle.Render(p))
			}
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if fn.Doc != "" {
		b.WriteString(hintStyle.Render("  " + fn.Doc))
	}

	if argIndex >= fn.Arity {
		b.WriteString(errorStyle.Render("  too many arguments"))
	}

	return b.String()
}
