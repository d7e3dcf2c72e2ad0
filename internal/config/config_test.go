package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lectern/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("LECTERN_FFPROBE", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "lectern", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	wantCache := filepath.Join(tempHome, ".cache", "lectern", "probe_cache.db")
	if cfg.Probe.CachePath != wantCache {
		t.Fatalf("unexpected probe cache path: got %q want %q", cfg.Probe.CachePath, wantCache)
	}
	if !filepath.IsAbs(cfg.Paths.MaterialsDir) {
		t.Fatalf("expected absolute materials dir, got %q", cfg.Paths.MaterialsDir)
	}
	if cfg.Canvas.Width != 1920 || cfg.Canvas.Height != 1080 || cfg.Canvas.WebcamPercent != 25 {
		t.Fatalf("unexpected canvas defaults: %+v", cfg.Canvas)
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
	if cfg.Fetch.UserAgent != "bbb-video-downloader/1.0" {
		t.Fatalf("unexpected user agent: %q", cfg.Fetch.UserAgent)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lectern.toml")
	backdrop := filepath.Join(tempDir, "backdrop.png")
	if err := os.WriteFile(backdrop, []byte("png"), 0o644); err != nil {
		t.Fatalf("write backdrop: %v", err)
	}

	type payload struct {
		Canvas struct {
			Width         int    `toml:"width"`
			Height        int    `toml:"height"`
			WebcamPercent int    `toml:"webcam_percent"`
			Backdrop      string `toml:"backdrop"`
		} `toml:"canvas"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Canvas.Width = 1280
	custom.Canvas.Height = 720
	custom.Canvas.WebcamPercent = 30
	custom.Canvas.Backdrop = backdrop
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Canvas.Width != 1280 || cfg.Canvas.Height != 720 || cfg.Canvas.WebcamPercent != 30 {
		t.Fatalf("unexpected canvas: %+v", cfg.Canvas)
	}
	if cfg.Canvas.Backdrop != backdrop {
		t.Fatalf("unexpected backdrop: %q", cfg.Canvas.Backdrop)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "webcam percent", content: "[canvas]\nwebcam_percent = 100\n", want: "webcam_percent"},
		{name: "width", content: "[canvas]\nwidth = 0\n", want: "canvas.width"},
		{name: "missing backdrop", content: "[canvas]\nbackdrop = \"/definitely/not/here.png\"\n", want: "canvas.backdrop"},
		{name: "log level", content: "[logging]\nlevel = \"loud\"\n", want: "logging.level"},
		{name: "unknown key", content: "[canvas]\nwebcam_size = 10\n", want: "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lectern.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error %q", tc.want, err.Error())
			}
		})
	}
}

func TestFFprobeEnvOverride(t *testing.T) {
	t.Setenv("LECTERN_FFPROBE", "/opt/ffmpeg/bin/ffprobe")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("expected env override, got %q", cfg.FFprobeBinary())
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Canvas.WebcamPercent != 25 {
		t.Fatalf("unexpected webcam percent %d", cfg.Canvas.WebcamPercent)
	}
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(encoded), "webcam_percent = 25") {
		t.Fatalf("expected encoded config to include canvas, got %s", encoded)
	}
}
