package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lectern/internal/assets"
	"lectern/internal/config"
	"lectern/internal/logging"
	"lectern/internal/media/probecache"
)

type commandContext struct {
	configFlag    string
	logLevelFlag  string
	logFormatFlag string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	// baseProber probes media when no cache is configured; tests replace it.
	baseProber func(cfg *config.Config) assets.Prober
	tempDir    string
}

func newCommandContext() *commandContext {
	return &commandContext{
		baseProber: func(cfg *config.Config) assets.Prober {
			return assets.FFprobe{Binary: cfg.FFprobeBinary()}
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := strings.TrimSpace(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("create logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// prober returns the media prober for a run, wrapped in the persistent probe
// cache when enabled. The returned close function is never nil.
func (c *commandContext) prober(cfg *config.Config, logger *slog.Logger) (assets.Prober, func(), error) {
	base := c.baseProber(cfg)
	if !cfg.Probe.CacheEnabled {
		return base, func() {}, nil
	}
	store, err := probecache.Open(cfg.Probe.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open probe cache: %w", err)
	}
	cached := probecache.NewProber(store, base, logger)
	return cached, func() {
		hits, misses := cached.Stats()
		logger.Debug("probe cache closed",
			logging.String("path", store.Path()),
			logging.Int("hits", hits),
			logging.Int("misses", misses))
		if err := store.Close(); err != nil {
			logger.Warn("failed to close probe cache", logging.Error(err))
		}
	}, nil
}

// configSource describes where the loaded configuration came from.
func (c *commandContext) configSource() string {
	if !c.configExists {
		return fmt.Sprintf("built-in defaults (no file at %s)", c.configPath)
	}
	return c.configPath
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
