package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/internal/config"
	"lectern/internal/logging"
	"lectern/internal/runctx"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerLiftsComponentAndTrack(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writers: []io.Writer{&buf}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := runctx.WithTrack(context.Background(), "Slides")
	component := logging.NewComponentLogger(logger, "assets")
	logging.WithContext(ctx, component).Info("asset resolved",
		logging.String("path", "/rec/video/webcams.webm"),
		logging.String("note", "two words"))
	component.Debug("hidden at info level")

	line := buf.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected one line, got %q", line)
	}
	if !strings.Contains(line, " INFO  [Slides] assets: asset resolved") {
		t.Fatalf("expected track and component prefix, got %q", line)
	}
	if !strings.Contains(line, "path=/rec/video/webcams.webm") || !strings.Contains(line, `note="two words"`) {
		t.Fatalf("expected attributes, got %q", line)
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "track=") {
		t.Fatalf("expected lifted fields to be dropped from the tail, got %q", line)
	}
}

func TestConsoleLoggerGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writers: []io.Writer{&buf}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithGroup("canvas").Info("layout", logging.Int("width", 1920))
	if !strings.Contains(buf.String(), "canvas.width=1920") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writers: []io.Writer{&buf}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := runctx.WithTrack(runctx.WithRunID(context.Background(), "run-42"), "Slides")
	logging.WithContext(ctx, logger).Info("placed clip")

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	assertField := func(key string, want any) {
		t.Helper()
		if payload[key] != want {
			t.Fatalf("field %s = %v, want %v", key, payload[key], want)
		}
	}
	assertField("msg", "placed clip")
	assertField("level", "info")
	assertField(logging.FieldRunID, "run-42")
	assertField(logging.FieldTrack, "Slides")
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts field in %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writers: []io.Writer{&buf}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "optional component missing", "fetch_component_skipped",
		logging.String(logging.FieldImpact, "captions absent"))

	content := buf.String()
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if !strings.Contains(content, `"`+key+`"`) {
			t.Fatalf("expected %s in %q", key, content)
		}
	}
	if strings.Count(content, `"`+logging.FieldImpact+`"`) != 1 || !strings.Contains(content, "captions absent") {
		t.Fatalf("expected caller impact to win over the default, got %q", content)
	}
}
