package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/jslight/lang"
	"github.com/ardnew/jslight/log"
)

// Run parses and runs programs, then prints the resulting bindings.
type Run struct {
	Format            string `default:"native" enum:"${formatEnum}" help:"Output format of the bindings (${enum})." short:"F"`
	AST               bool   `help:"Print each parsed program before running it." name:"ast"`
	Query             string `help:"Print the value of an expr-lang expression over the bindings instead of the bindings." short:"q"`
	PlaceholderPrefix bool   `help:"Evaluate unary operators to the string \"TODO\"."`

	Files []string `arg:"" help:"Program files, or '-' for stdin. Bindings carry over from one file to the next." name:"file" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, err := lang.ParseFormat(r.Format)
	if err != nil {
		return err
	}

	srcs, err := openSources(r.Files)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	w := output(ctx)
	runner := lang.New(
		lang.WithLogger(log.Default()),
		lang.WithPrefixPlaceholder(r.PlaceholderPrefix),
	)

	for _, src := range srcs {
		prg, err := lang.ParseReader(ctx, src,
			lang.WithFilename(src.name),
			lang.WithLogger(log.Default()),
		)
		if err != nil {
			return lang.WrapError(err).With(slog.String("file", src.name))
		}

		if r.AST {
			if _, err := fmt.Fprintf(w, "parsed prg:\n%s\nexecuting prg\n", prg); err != nil {
				return err
			}
		}

		if err := runner.Run(ctx, prg); err != nil {
			return lang.WrapError(err).With(slog.String("file", src.name))
		}

		log.DebugContext(ctx, "executed program",
			slog.String("file", src.name),
			slog.Int("statements", len(prg.Stmts)),
			slog.Int("bindings", runner.Len()),
		)
	}

	if r.Query != "" {
		v, err := runner.Query(ctx, r.Query)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, v)

		return err
	}

	err = lang.FormatBindings(ctx, w, runner.Bindings(), format)
	if err != nil {
		switch format {
		case lang.FormatJSON:
			return ErrJSONMarshal.Wrap(err)
		case lang.FormatYAML:
			return ErrYAMLMarshal.Wrap(err)
		}
	}

	return err
}
