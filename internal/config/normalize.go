package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCanvas(); err != nil {
		return err
	}
	if err := c.normalizeProbe(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.MaterialsDir) == "" {
		c.Paths.MaterialsDir = defaultMaterialsDir
	}
	if c.Paths.MaterialsDir, err = expandPath(c.Paths.MaterialsDir); err != nil {
		return fmt.Errorf("paths.materials_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCanvas() error {
	c.Canvas.Backdrop = strings.TrimSpace(c.Canvas.Backdrop)
	if c.Canvas.Backdrop == "" {
		return nil
	}
	var err error
	if c.Canvas.Backdrop, err = expandPath(c.Canvas.Backdrop); err != nil {
		return fmt.Errorf("canvas.backdrop: %w", err)
	}
	return nil
}

func (c *Config) normalizeProbe() error {
	c.Probe.FFprobeBinary = strings.TrimSpace(c.Probe.FFprobeBinary)
	if value, ok := os.LookupEnv("LECTERN_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Probe.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Probe.FFprobeBinary == "" {
		c.Probe.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Probe.CachePath) == "" {
		c.Probe.CachePath = filepath.Join(c.Paths.CacheDir, defaultProbeCacheFile)
	}
	var err error
	if c.Probe.CachePath, err = expandPath(c.Probe.CachePath); err != nil {
		return fmt.Errorf("probe.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	if c.Fetch.MaxResumes < 0 {
		c.Fetch.MaxResumes = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
