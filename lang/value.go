package lang

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime type of a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNum
	KindStr
	KindArray
	KindObject
)

// String returns the lowercase type name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNum:
		return "number"
	case KindStr:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the fully evaluated result of an expression. A Value never
// contains unevaluated expressions.
//
// The variants are [Object], [Array], [Str], [Num], [Bool], and [Null].
// String renders the display form printed for variable bindings.
type Value interface {
	String() string
	Kind() Kind
	value()
}

type (
	// Str is a string value. It holds the source text between the quotes,
	// escape sequences included.
	Str string

	// Num is a 64-bit floating point number.
	Num float64

	// Bool is a boolean value.
	Bool bool

	// Null is the null value.
	Null struct{}

	// Array is an ordered list of values.
	Array []Value

	// Object is an ordered list of fields. Duplicate names are retained in
	// the order they were written.
	Object []Field
)

// Field is a single named member of an [Object].
type Field struct {
	Name  string
	Value Value
}

func (Str) value()    {}
func (Num) value()    {}
func (Bool) value()   {}
func (Null) value()   {}
func (Array) value()  {}
func (Object) value() {}

func (Str) Kind() Kind    { return KindStr }
func (Num) Kind() Kind    { return KindNum }
func (Bool) Kind() Kind   { return KindBool }
func (Null) Kind() Kind   { return KindNull }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (s Str) String() string  { return `"` + string(s) + `"` }
func (n Num) String() string  { return formatNum(float64(n)) }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Null) String() string   { return "null" }

func (a Array) String() string {
	var buf strings.Builder

	buf.WriteByte('[')

	for i, v := range a {
		if i > 0 {
			buf.WriteString(", ")
		}

		buf.WriteString(v.String())
	}

	buf.WriteByte(']')

	return buf.String()
}

func (o Object) String() string {
	var buf strings.Builder

	buf.WriteByte('{')

	for i, f := range o {
		if i > 0 {
			buf.WriteString(", ")
		}

		buf.WriteByte('"')
		buf.WriteString(f.Name)
		buf.WriteString(`": `)
		buf.WriteString(f.Value.String())
	}

	buf.WriteByte('}')

	return buf.String()
}

// Get returns the value of the last field named name.
func (o Object) Get(name string) (Value, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Name == name {
			return o[i].Value, true
		}
	}

	return nil, false
}

// Unique returns the fields of o with duplicate names collapsed. Each name
// keeps the position of its first occurrence and the value of its last.
func (o Object) Unique() Object {
	index := make(map[string]int, len(o))
	out := make(Object, 0, len(o))

	for _, f := range o {
		if i, ok := index[f.Name]; ok {
			out[i].Value = f.Value

			continue
		}

		index[f.Name] = len(out)
		out = append(out, f)
	}

	return out
}

// formatNum renders a number in its shortest decimal form without an
// exponent. Infinities render as "inf" and "-inf".
func formatNum(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// Native converts v to plain Go values: string, int64 for integral numbers,
// float64, bool, nil, []any, and map[string]any. Object fields with the
// same name resolve to the last one. Escape sequences in strings are
// decoded where they form a valid Go string literal.
func Native(v Value) any {
	switch v := v.(type) {
	case Str:
		return v.Text()

	case Num:
		return nativeNum(float64(v))

	case Bool:
		return bool(v)

	case Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Native(e)
		}

		return out

	case Object:
		out := make(map[string]any, len(v))
		for _, f := range v {
			out[f.Name] = Native(f.Value)
		}

		return out

	default:
		return nil
	}
}

// Text returns the string with escape sequences decoded. If the raw text
// is not a valid quoted string body, it is returned unchanged.
func (s Str) Text() string {
	if !strings.ContainsRune(string(s), '\\') {
		return string(s)
	}

	if t, err := strconv.Unquote(`"` + string(s) + `"`); err == nil {
		return t
	}

	return string(s)
}

func nativeNum(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}

	return f
}

// MarshalJSON encodes the decoded string text.
func (s Str) MarshalJSON() ([]byte, error) { return json.Marshal(s.Text()) }

// MarshalJSON encodes integral numbers without a fraction.
// Non-finite numbers cannot be represented in JSON and yield an error.
func (n Num) MarshalJSON() ([]byte, error) { return json.Marshal(nativeNum(float64(n))) }

func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON encodes the object's unique fields in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range o.Unique() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Equal reports whether a and b are structurally equal. Numbers compare by
// IEEE equality, so NaN is not equal to itself.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Str:
		b, ok := b.(Str)

		return ok && a == b

	case Num:
		b, ok := b.(Num)

		return ok && a == b

	case Bool:
		b, ok := b.(Bool)

		return ok && a == b

	case Null:
		_, ok := b.(Null)

		return ok

	case Array:
		b, ok := b.(Array)
		if !ok || len(a) != len(b) {
			return false
		}

		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}

		return true

	case Object:
		b, ok := b.(Object)
		if !ok || len(a) != len(b) {
			return false
		}

		for i := range a {
			if a[i].Name != b[i].Name || !Equal(a[i].Value, b[i].Value) {
				return false
			}
		}

		return true

	default:
		return false
	}
}
