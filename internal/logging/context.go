package logging

import (
	"context"
	"log/slog"

	"lectern/internal/runctx"
)

const (
	// FieldComponent names the package or subsystem emitting a line.
	FieldComponent = "component"
	// FieldRunID correlates every line of one command invocation.
	FieldRunID = "run_id"
	// FieldTrack is the layer being assembled.
	FieldTrack = "track"
)

// WithContext returns a logger carrying the run id and track recorded in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := runctx.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if track, ok := runctx.TrackFromContext(ctx); ok {
		args = append(args, slog.String(FieldTrack, track))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
