// Package obslog provides the structured-logging conventions shared by
// the kernel, router and simulation packages: a per-router child
// logger carrying stable "router" and "now" attributes, mirroring the
// slog bootstrap used throughout the shurli codebase's cmd/ entry
// points (slog.SetDefault(slog.New(...)) plus direct slog.Info/Warn/
// Error call sites) rather than a bespoke logging facade.
package obslog

import (
	"io"
	"log/slog"
)

// New builds a text-handler logger; it does not replace slog's
// process-wide default. w defaults to io.Discard
// when nil so tests stay silent unless they opt in.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ForRouter returns a child logger with a stable "router" attribute.
func ForRouter(base *slog.Logger, router string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("router", router)
}

// NowFunc lets callers attach the current virtual time to a log line
// without obslog depending on package kernel.
type NowFunc func() float64

// AtTime returns a logger with the "now" attribute set to now().
func AtTime(l *slog.Logger, now NowFunc) *slog.Logger {
	return l.With("now", now())
}
