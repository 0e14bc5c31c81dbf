// Package cmd implements the jslight subcommands: run, fmt, init and repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration program.
	ConfigIdentifier = "config"

	// FormatEnumIdentifier is the kong variable identifier containing the
	// comma-separated names of the output formats.
	FormatEnumIdentifier = "formatEnum"
)
