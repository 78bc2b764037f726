// Package logging builds the slog loggers used across shelfsync.
//
// Two formats are available: "console" (logfmt-style text with a short
// timestamp) and "json" (one object per line with ts/level/msg keys). Records
// go to stderr by default so command output on stdout stays machine-readable.
// Debug level adds the source file and line to every record.
//
//	logger, err := logging.NewFromSettings(settings)
//	client := abs.NewClient(url, key, abs.WithLogger(logger))
package logging
