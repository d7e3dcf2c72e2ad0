package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"lectern/internal/config"
)

// LogFileName is the file appended to inside the configured log directory.
const LogFileName = "lectern.log"

// Options describes logger construction parameters. With no writers the
// logger writes to stderr.
type Options struct {
	Level   string
	Format  string
	Writers []io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	var out io.Writer = os.Stderr
	switch len(opts.Writers) {
	case 0:
	case 1:
		out = opts.Writers[0]
	default:
		out = io.MultiWriter(opts.Writers...)
	}
	level := parseLevel(opts.Level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(&consoleHandler{state: &consoleState{w: out}, level: level}), nil
	case "json":
		return slog.New(newJSONHandler(out, level)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger using application config defaults. Log lines
// go to stderr so stdout stays free for command output; when a log directory
// is configured they are also appended to lectern.log there.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	writers := []io.Writer{os.Stderr}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		path := filepath.Join(cfg.Paths.LogDir, LogFileName)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		writers = append(writers, file)
	}
	return New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writers: writers})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			}
			return attr
		},
	})
}

// consoleState is shared by every handler derived from one logger so lines
// from different components never interleave.
type consoleState struct {
	mu sync.Mutex
	w  io.Writer
}

// consoleHandler renders one line per record:
//
//	15:04:05 INFO  [Slides] assets: asset resolved path=/rec/shapes.svg
//
// The component and track attributes are lifted out of the key=value tail.
type consoleHandler struct {
	state  *consoleState
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var component, track string
	var tail bytes.Buffer
	emit := func(key string, value slog.Value) {
		switch key {
		case FieldComponent:
			component = value.String()
		case FieldTrack:
			track = value.String()
		default:
			tail.WriteByte(' ')
			tail.WriteString(key)
			tail.WriteByte('=')
			tail.WriteString(quoteIfNeeded(valueString(value)))
		}
	}
	for _, attr := range h.attrs {
		walkAttr(attr, "", emit)
	}
	record.Attrs(func(attr slog.Attr) bool {
		walkAttr(attr, h.prefix, emit)
		return true
	})

	stamp := record.Time
	if stamp.IsZero() {
		stamp = time.Now()
	}
	var line bytes.Buffer
	line.WriteString(stamp.Format(time.TimeOnly))
	fmt.Fprintf(&line, " %-5s ", record.Level.String())
	if track != "" {
		line.WriteString("[" + track + "] ")
	}
	if component != "" {
		line.WriteString(component + ": ")
	}
	line.WriteString(record.Message)
	line.Write(tail.Bytes())
	line.WriteByte('\n')

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	_, err := h.state.w.Write(line.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		if h.prefix != "" {
			attr.Key = h.prefix + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func walkAttr(attr slog.Attr, prefix string, emit func(string, slog.Value)) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range value.Group() {
			walkAttr(member, prefix, emit)
		}
		return
	}
	if attr.Key == "" {
		return
	}
	emit(prefix+attr.Key, value)
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
