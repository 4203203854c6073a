// Package logging builds the slog loggers used across drivesort.
//
// It provides console and JSON handlers selected by configuration, small
// aliases over slog.Attr so call sites stay terse, and a no-op logger for
// tests. Components derive their loggers with
// logger.With(logging.String("component", ...)) so every line carries its
// origin.
package logging
