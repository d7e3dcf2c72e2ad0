package probecache

import (
	"context"
	"log/slog"

	"lectern/internal/assets"
	"lectern/internal/logging"
	"lectern/internal/timeline"
)

// Prober serves probes from the store and falls back to next on a miss.
// Cache failures are logged and never fail a probe.
type Prober struct {
	store  *Store
	next   assets.Prober
	logger *slog.Logger

	hits   int
	misses int
}

// NewProber wraps next with the persistent cache.
func NewProber(store *Store, next assets.Prober, logger *slog.Logger) *Prober {
	return &Prober{store: store, next: next, logger: logging.NewComponentLogger(logger, "probecache")}
}

// Probe implements assets.Prober.
func (p *Prober) Probe(ctx context.Context, path string) (timeline.Info, error) {
	logger := logging.WithContext(ctx, p.logger)
	key, err := KeyFor(path)
	if err != nil {
		return p.next.Probe(ctx, path)
	}

	info, ok, err := p.store.Lookup(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "probe cache lookup failed", "probe_cache_error",
			logging.String("path", key.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "media will be probed again"),
			logging.String(logging.FieldErrorHint, "delete "+p.store.Path()+" if the error persists"))
	}
	if ok {
		p.hits++
		logger.Debug("probe cache hit", logging.String("path", key.Path))
		return info, nil
	}

	p.misses++
	info, err = p.next.Probe(ctx, key.Path)
	if err != nil {
		return timeline.Info{}, err
	}
	if err := p.store.Put(ctx, key, info); err != nil {
		logging.WarnWithContext(logger, "probe cache write failed", "probe_cache_error",
			logging.String("path", key.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next build will probe this file again"),
			logging.String(logging.FieldErrorHint, "check permissions on "+p.store.Path()))
	}
	return info, nil
}

// Stats returns cache hits and misses since construction.
func (p *Prober) Stats() (hits, misses int) {
	return p.hits, p.misses
}
