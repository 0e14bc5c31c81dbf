package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from these with [Error.Wrap]
// or [Error.With] and still match them with [errors.Is].
var (
	ErrSyntax                = NewError("syntax error")
	ErrUndefinedVariable     = NewError("undefined variable")
	ErrUnknownFunction       = NewError("unknown function")
	ErrArityMismatch         = NewError("arity mismatch")
	ErrTypeMismatch          = NewError("type mismatch")
	ErrInvalidStringOperator = NewError("invalid string operator")
	ErrInvalidOperand        = NewError("invalid operand")
	ErrFile                  = NewError("cannot read file")
	ErrReadInput             = NewError("failed to read input")
	ErrQuery                 = NewError("query failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	kind  *Error      // Sentinel this error was derived from
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
// If err is already an *Error, it is returned unchanged.
func WrapError(err error) *Error {
	if ee, ok := err.(*Error); ok {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or ""
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from the same sentinel as target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.kind != nil && e.kind == t.kind
}

// Attr returns the value of the structured attribute named key.
// When an attribute is added more than once, the last one wins.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for i := len(e.attrs) - 1; i >= 0; i-- {
		if e.attrs[i].Key == key {
			return e.attrs[i].Value, true
		}
	}

	return slog.Value{}, false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		kind:  e.kind,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		kind:  e.kind,
		attrs: newAttrs,
	}
}

// SyntaxError reports source text that does not conform to the grammar.
// It matches [ErrSyntax] with [errors.Is].
type SyntaxError struct {
	Pos     Position
	Message string // Description of the unexpected and expected tokens
	Source  string // The original source input
}

// Error implements the error interface.
//
// When the source is available, the offending line is included with a caret
// under the column where parsing failed:
//
//	syntax error at main.jsl:2:9: unexpected token ";"
//	  2 | var b = ;
//	              ^
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error")

	if e.Pos.Line > 0 {
		buf.WriteString(" at ")
		buf.WriteString(e.Pos.String())
	}

	if e.Message != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Message)
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return buf.String()
	}

	num := strconv.Itoa(e.Pos.Line)

	buf.WriteString("\n  ")
	buf.WriteString(num)
	buf.WriteString(" | ")
	buf.WriteString(strings.TrimRight(lines[e.Pos.Line-1], "\r"))
	buf.WriteByte('\n')

	// 2 leading spaces + " | "
	buf.WriteString(strings.Repeat(" ", len(num)+5))

	if e.Pos.Column > 0 {
		buf.WriteString(strings.Repeat(" ", e.Pos.Column-1))
	}

	buf.WriteByte('^')

	return buf.String()
}

// Unwrap returns [ErrSyntax].
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.msg),
		slog.String("message", e.Message),
		slog.String("pos", e.Pos.String()),
	)
}
