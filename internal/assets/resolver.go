package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lectern/internal/faults"
	"lectern/internal/logging"
	"lectern/internal/timeline"
)

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (timeline.Info, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (timeline.Info, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, path string) (timeline.Info, error) {
	return f(ctx, path)
}

// Registrar receives every newly resolved asset.
type Registrar interface {
	RegisterAsset(asset *timeline.Asset)
}

// Resolver caches probed assets by absolute path. It is not safe for
// concurrent use; one resolver serves one assembly run.
type Resolver struct {
	prober    Prober
	registrar Registrar
	logger    *slog.Logger
	cache     map[string]*timeline.Asset
	probes    int
}

// NewResolver builds a resolver. registrar may be nil.
func NewResolver(prober Prober, registrar Registrar, logger *slog.Logger) *Resolver {
	return &Resolver{
		prober:    prober,
		registrar: registrar,
		logger:    logging.NewComponentLogger(logger, "assets"),
		cache:     make(map[string]*timeline.Asset),
	}
}

// Resolve returns the asset for path, probing it on first use.
func (r *Resolver) Resolve(ctx context.Context, path string) (*timeline.Asset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "resolve", "empty path", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "resolve", path, err)
	}
	if asset, ok := r.cache[abs]; ok {
		return asset, nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "resolve", abs+" does not exist", nil)
		}
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "resolve", abs, err)
	}
	if info.IsDir() {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "resolve", abs+" is a directory", nil)
	}
	if r.prober == nil {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "resolve", "no prober configured", nil)
	}

	r.probes++
	media, err := r.prober.Probe(ctx, abs)
	if err != nil {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "assets", "probe", abs, err)
	}

	asset := &timeline.Asset{Path: abs, Info: media}
	r.cache[abs] = asset
	if r.registrar != nil {
		r.registrar.RegisterAsset(asset)
	}

	logging.WithContext(ctx, r.logger).Debug("asset resolved",
		logging.String(logging.FieldEventType, "asset_resolved"),
		logging.String("path", abs),
		logging.Int("width", media.Width),
		logging.Int("height", media.Height),
		logging.Duration("duration", media.Duration),
		logging.Bool("image", media.IsImage))
	return asset, nil
}

// Probes returns how many times the underlying prober has been invoked.
func (r *Resolver) Probes() int {
	return r.probes
}

// Len returns the number of cached assets.
func (r *Resolver) Len() int {
	return len(r.cache)
}

func (r *Resolver) String() string {
	return fmt.Sprintf("resolver(%d assets, %d probes)", len(r.cache), r.probes)
}
