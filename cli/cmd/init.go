package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jslight/lang"
	"github.com/ardnew/jslight/log"
	"github.com/ardnew/jslight/pkg"
	"github.com/ardnew/jslight/profile"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	confPath := modelVar(ctx, ConfigIdentifier)
	if confPath == "" {
		panic("internal error: configuration path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = writeConfig(file, buildConfig(kongContextFrom(ctx)))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// writeConfig writes prg to w after a comment header.
func writeConfig(w io.Writer, prg *lang.Prg) error {
	_, err := fmt.Fprintf(w,
		"// %s %s configuration.\n//\n"+
			"// Each variable sets the command-line flag of the same name, with\n"+
			"// underscores in place of hyphens.\n\n%s",
		pkg.Name, pkg.Version, prg,
	)

	return err
}

// buildConfig constructs a program assigning the current value of each
// configurable flag.
func buildConfig(ktx *kong.Context) *lang.Prg {
	prg := new(lang.Prg)

	ignore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := flagValue(ktx.FlagValue(flag))
		if val == nil {
			continue
		}

		prg.Stmts = append(prg.Stmts, lang.Assign{
			Name:  strings.ReplaceAll(flag.Name, "-", "_"),
			Value: val,
		})
	}

	return prg
}

// flagValue returns the literal of a flag value, or nil if it is unset or
// has no literal form.
func flagValue(val any) lang.Expr {
	switch v := val.(type) {
	case bool:
		return lang.BoolLit(v)

	case string:
		if v == "" {
			return nil
		}

		return quote(v)

	case int:
		return lang.NumLit(v)

	case int64:
		return lang.NumLit(v)

	case uint:
		return lang.NumLit(v)

	case float64:
		return lang.NumLit(v)

	case []string:
		if len(v) == 0 {
			return nil
		}

		elems := make([]lang.Expr, len(v))
		for i, s := range v {
			elems[i] = quote(s)
		}

		return lang.ArrayLit{Elems: elems}

	default:
		// Named string types, such as the log flag enums.
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String && rv.Len() > 0 {
			return quote(rv.String())
		}
	}

	return nil
}

// quote returns the string literal denoting s.
func quote(s string) lang.StrLit {
	q := strconv.Quote(s)

	return lang.StrLit(q[1 : len(q)-1])
}
