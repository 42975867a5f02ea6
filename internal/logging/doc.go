// Package logging assembles structured slog loggers and formatting helpers used
// across the queue display daemon and CLI.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so poll cycles and API requests
// can tag log lines with room IDs, configuration epochs, and correlation IDs.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
