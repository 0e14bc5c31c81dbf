package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/jslight/lang"
	"github.com/ardnew/jslight/log"
)

// Fmt parses a program and prints it in the chosen form.
type Fmt struct {
	Native  Native  `cmd:"" default:"withargs" help:"Print in canonical jslight syntax (default)."`
	AST     AST     `cmd:""                    help:"Print as an abstract syntax tree."`
	Grammar Grammar `cmd:""                    help:"Print the grammar in EBNF."`
}

// Native prints a program in canonical syntax.
type Native struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prg, err := parseSource(ctx, f.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "native"))
	}

	_, err = io.WriteString(output(ctx), prg.String())

	return err
}

// AST prints a program as an indented tree.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prg, err := parseSource(ctx, a.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "ast"))
	}

	return prg.Print(ctx, output(ctx))
}

// Grammar prints the grammar of the language.
type Grammar struct{}

// Run executes the fmt grammar command.
func (g *Grammar) Run(ctx context.Context) error {
	_, err := io.WriteString(output(ctx), lang.Grammar()+"\n")

	return err
}

// parseSource parses the program in the named file, or stdin for "-".
func parseSource(ctx context.Context, name string) (*lang.Prg, error) {
	srcs, err := openSources([]string{name})
	if err != nil {
		return nil, err
	}
	defer closeSources(srcs)

	return lang.ParseReader(ctx, srcs[0],
		lang.WithFilename(srcs[0].name),
		lang.WithLogger(log.Default()),
	)
}
