package lang

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
)

// Query evaluates an expr-lang expression over the current bindings,
// converted with [Native]. For example, after running
//
//	var c = [1, 2, 7];
//
// the query "sum(c) > 5" returns true.
func (r *Runner) Query(ctx context.Context, src string) (any, error) {
	env := r.Native()

	r.logger.TraceContext(ctx, "query compile",
		slog.String("query", src),
		slog.Int("bindings", len(env)),
	)

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", src))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", src))
	}

	r.logger.TraceContext(ctx, "query complete", slog.String("query", src))

	return out, nil
}
