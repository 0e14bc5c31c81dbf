package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format selects how variable bindings are written.
type Format int

const (
	FormatNative Format = iota // vars (N): followed by "  name = value" lines
	FormatJSON                 // a JSON object in name order
	FormatYAML                 // a YAML mapping in name order
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Formats returns an iterator over the names of all formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatNative, FormatJSON, FormatYAML} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatNative, FormatJSON, FormatYAML} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}

	return 0, fmt.Errorf("unknown format %q", s)
}

// FormatBindings writes bindings to w in the given format. Bindings are
// written in the order given; [Runner.Bindings] returns them sorted.
func FormatBindings(ctx context.Context, w io.Writer, bindings []Binding, format Format) error {
	switch format {
	case FormatNative:
		return writeNative(w, bindings)

	case FormatJSON:
		obj := make(Object, len(bindings))
		for i, b := range bindings {
			obj[i] = Field{Name: b.Name, Value: b.Value}
		}

		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case FormatYAML:
		doc := make(yaml.MapSlice, len(bindings))
		for i, b := range bindings {
			doc[i] = yaml.MapItem{Key: b.Name, Value: yamlValue(b.Value)}
		}

		data, err := yaml.MarshalContext(ctx, doc, yaml.Indent(2))
		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err

	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

func writeNative(w io.Writer, bindings []Binding) error {
	var buf strings.Builder

	buf.WriteString("vars (")
	buf.WriteString(strconv.Itoa(len(bindings)))
	buf.WriteString("):\n")

	for _, b := range bindings {
		buf.WriteString("  ")
		buf.WriteString(b.String())
		buf.WriteByte('\n')
	}

	_, err := io.WriteString(w, buf.String())

	return err
}

// yamlValue converts v like [Native] but keeps object field order.
func yamlValue(v Value) any {
	switch v := v.(type) {
	case Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = yamlValue(e)
		}

		return out

	case Object:
		unique := v.Unique()
		out := make(yaml.MapSlice, len(unique))

		for i, f := range unique {
			out[i] = yaml.MapItem{Key: f.Name, Value: yamlValue(f.Value)}
		}

		return out

	default:
		return Native(v)
	}
}
