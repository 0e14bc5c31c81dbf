package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jslight/lang"
	"github.com/ardnew/jslight/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in jslight itself.
//
// The program is run and each binding provides the default of the flag
// with the same name, with underscores standing in for hyphens:
//
//	var log_level = "debug";
//	var log_pretty = false;
//
// applies as
//
//	--log-level=debug --no-log-pretty
//
// A program that fails to parse or run is reported and contributes no
// values, so a broken config file never prevents the CLI from starting.
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		prg, err := lang.ParseReader(ctx, r, lang.WithFilename(baseConfig))
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		runner := lang.New()
		if err := runner.Run(ctx, prg); err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		return makeConfig(runner.Bindings()), nil
	}
}

// config implements [kong.Resolver] over the bindings of a config program.
type config map[string]any

// makeConfig converts bindings to values kong can decode. Numbers are
// formatted as strings since kong parses numeric flags from text.
func makeConfig(bindings []lang.Binding) config {
	c := make(config, len(bindings))

	for _, b := range bindings {
		switch v := lang.Native(b.Value).(type) {
		case int64:
			c[b.Name] = strconv.FormatInt(v, 10)
		case float64:
			c[b.Name] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			c[b.Name] = v
		}
	}

	return c
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}
