package config

const (
	defaultConfigPath     = "~/.config/lectern/config.toml"
	defaultMaterialsDir   = "materials"
	defaultLogDir         = "~/.local/share/lectern/logs"
	defaultCanvasWidth    = 1920
	defaultCanvasHeight   = 1080
	defaultWebcamPercent  = 25
	defaultFFprobeBinary  = "ffprobe"
	defaultProbeCacheFile = "probe_cache.db"
	defaultUserAgent      = "bbb-video-downloader/1.0"
	defaultFetchTimeout   = 600
	defaultMaxResumes     = 20
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MaterialsDir: defaultMaterialsDir,
			LogDir:       defaultLogDir,
			CacheDir:     defaultCacheDir(),
		},
		Canvas: Canvas{
			Width:         defaultCanvasWidth,
			Height:        defaultCanvasHeight,
			WebcamPercent: defaultWebcamPercent,
		},
		Probe: Probe{
			FFprobeBinary: defaultFFprobeBinary,
		},
		Fetch: Fetch{
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultFetchTimeout,
			MaxResumes:     defaultMaxResumes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
