// Package logging provides structured logging setup for the gateway.
//
// Loggers are built on log/slog with configurable level and output format
// (json, text, console). Components derive scoped loggers via
// slog.Default().With("component", ...), and request-scoped identifiers
// travel through the context helpers in this package.
package logging
