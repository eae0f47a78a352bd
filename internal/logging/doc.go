// Package logging assembles structured slog loggers and formatting helpers used
// across timeplus.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so session code can tag log lines
// with the media key it is bound to. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
