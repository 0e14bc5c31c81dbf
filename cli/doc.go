// Package cli contains the command line interface for jslight.
//
// # Usage
//
//	jslight [flags] [run] FILE...      run programs, print bindings
//	jslight fmt native|ast|grammar     reformat a program or show its tree
//	jslight init [--force]             write the default configuration
//	jslight repl [FILE]                interactive shell
//
// # Configuration
//
// Flags may be given defaults in two files under the user configuration
// directory (e.g. ~/.config/jslight on Linux):
//
//   - config.json: a JSON object keyed by flag name
//   - config: a jslight program whose bindings name flags
//
// In the jslight form, hyphens in flag names are written as underscores:
//
//	var log_level = "debug";
//	var log_pretty = false;
//	var format = "yaml";
//
// Command-line flags override values from either file. See [cmd.Init] for
// generating a starting configuration.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, none, ...)
//   - --log-caller: include the source location
//   - --log-pretty: colorized output
//
// # Profiling Options
//
// Only available when built with the pprof build tag:
//
//	go build -tags pprof -o jslight .
//
//   - --pprof-mode: profiling mode (cpu, heap, trace, ...)
//   - --pprof-dir: output directory (default: <cache dir>/pprof)
package cli
