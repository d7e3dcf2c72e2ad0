// Package runctx carries per-run annotations (run identifier, track name)
// through context so log lines emitted deep inside the assembly engine can be
// correlated with the command that started them.
package runctx

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	trackKey contextKey = "track"
)

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTrack annotates context with the layer currently being built.
func WithTrack(ctx context.Context, track string) context.Context {
	if track == "" {
		return ctx
	}
	return context.WithValue(ctx, trackKey, track)
}

// TrackFromContext returns the track name if present.
func TrackFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(trackKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
