// Package logger provides structured logging functionality for the application.
//
// It builds on log/slog: JSON output for production, a colorized text handler
// (lmittmann/tint) for local development, and helpers for carrying a
// request-scoped logger through a context.Context.
package logger
