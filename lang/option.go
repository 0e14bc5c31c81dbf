package lang

import "github.com/ardnew/jslight/log"

// config holds settings shared by the parse functions and [Runner].
// Options that do not apply to an operation are ignored by it.
type config struct {
	logger            log.Logger
	filename          string
	builtins          Builtins
	prefixPlaceholder bool
}

// Option configures parsing or evaluation behavior.
type Option func(*config)

// WithLogger sets the logger used for trace output of parsing and
// evaluation. The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithFilename sets the file name reported in syntax error positions.
func WithFilename(name string) Option {
	return func(c *config) { c.filename = name }
}

// WithBuiltins replaces the builtin function registry of a [Runner].
// The default is [DefaultBuiltins].
func WithBuiltins(builtins Builtins) Option {
	return func(c *config) { c.builtins = builtins }
}

// WithPrefixPlaceholder makes a [Runner] evaluate every unary expression to
// the string "TODO" without evaluating its operand.
func WithPrefixPlaceholder(enable bool) Option {
	return func(c *config) { c.prefixPlaceholder = enable }
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
