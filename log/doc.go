// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options.
// Its zero value discards everything, so it can be embedded in other types
// without initialization.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("program loaded", slog.Int("statements", 3))
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's debug level and is
// rendered as "TRACE" rather than "DEBUG-4".
//
// # Output
//
// [FormatJSON] (default) and [FormatText] are supported. With [WithPretty]
// enabled (default), both are rendered with ANSI colors for terminals;
// otherwise the standard slog handlers are used.
//
// # Package-level logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger on stderr, which [Config] reconfigures. Context-unaware
// variants use [DefaultContextProvider], which returns [context.TODO].
package log
