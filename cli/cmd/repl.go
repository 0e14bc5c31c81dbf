package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/jslight/cli/cmd/repl"
	"github.com/ardnew/jslight/lang"
	"github.com/ardnew/jslight/log"
)

// Repl starts an interactive shell.
type Repl struct {
	PlaceholderPrefix bool `help:"Evaluate unary operators to the string \"TODO\"."`

	File string `arg:"" help:"Program to run before the shell starts." name:"file" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	runner, err := r.preload(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, runner, modelVar(ctx, CacheIdentifier), log.Default())
}

// preload returns a Runner holding the bindings of File, if any.
func (r *Repl) preload(ctx context.Context) (*lang.Runner, error) {
	runner := lang.New(
		lang.WithLogger(log.Default()),
		lang.WithPrefixPlaceholder(r.PlaceholderPrefix),
	)

	if r.File == "" {
		return runner, nil
	}

	prg, err := parseSource(ctx, r.File)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("file", r.File))
	}

	if err := runner.Run(ctx, prg); err != nil {
		return nil, lang.WrapError(err).With(slog.String("file", r.File))
	}

	return runner, nil
}
