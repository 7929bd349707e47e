// Package noop provides a slog.Handler that discards every record.
package noop

import (
	"context"
	"log/slog"
)

// LogHandler drops all records. It is the default handler of every logger
// the library creates on its own.
type LogHandler struct{}

func (LogHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (LogHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h LogHandler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h LogHandler) WithGroup(_ string) slog.Handler             { return h }

// Logger returns a logger backed by LogHandler.
func Logger() *slog.Logger {
	return slog.New(LogHandler{})
}
