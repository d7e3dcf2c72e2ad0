package preflight

import (
	"context"

	"lectern/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The probe cache is only checked when it is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))

	// Created on the first fetch, so only its parent has to be writable.
	results = append(results, CheckCreatableDirectory("Materials directory", cfg.Paths.MaterialsDir))

	if cfg.Canvas.Backdrop != "" {
		results = append(results, CheckReadableFile("Backdrop image", cfg.Canvas.Backdrop))
	}

	if cfg.Probe.CacheEnabled {
		results = append(results, CheckProbeCache(ctx, cfg.Probe.CachePath))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
