// Package log provides the structured logger used by the wmconf parser and
// command line, built on [log/slog].
//
// Parser diagnostics (unmatched braces, unterminated values, unresolved
// variables, failed key validation) are emitted as warnings through a
// [Logger]. Nothing in the parser treats them as errors, so the logger is
// the only place they surface.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Warn("extra closing brace",
//		slog.String("source", "~/.pekwm/config"),
//		slog.Int("line", 12))
//
// # Configuration
//
// Options are applied when the logger is created:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("none"))
//
// The package-level functions ([Debug], [Info], [Warn], [Error]) write to a
// default logger that the command line reconfigures with [Config].
//
// # Output Formats
//
// [FormatJSON] (default) and [FormatText]. With [WithPretty] enabled, both
// formats are colorized for terminals.
package log
