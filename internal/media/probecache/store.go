package probecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lectern/internal/timeline"
)

// Store manages the probe cache database.
type Store struct {
	db   *sql.DB
	path string
}

// Key identifies one version of a media file.
type Key struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// KeyFor stats path and builds its cache key.
func KeyFor(path string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Key{}, err
	}
	return Key{Path: abs, Size: info.Size(), ModTime: info.ModTime()}, nil
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy retries op with exponential backoff while another process holds
// the database lock.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("probe cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns cached info for key. The second result is false when the
// path is unknown or the file changed since it was cached.
func (s *Store) Lookup(ctx context.Context, key Key) (timeline.Info, bool, error) {
	ctx = ensureContext(ctx)
	var (
		info               timeline.Info
		size, mtime, durNS int64
		isImage            bool
		hasVideo, hasAudio bool
		found              bool
	)
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx, `SELECT size_bytes, mtime_ns, width, height, duration_ns,
			fps_num, fps_den, sample_rate, channels, is_image, has_video, has_audio
			FROM probes WHERE path = ?`, key.Path)
		scanErr := row.Scan(&size, &mtime, &info.Width, &info.Height, &durNS,
			&info.FrameRate.Num, &info.FrameRate.Den, &info.SampleRate, &info.Channels,
			&isImage, &hasVideo, &hasAudio)
		if errors.Is(scanErr, sql.ErrNoRows) {
			found = false
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		found = true
		return nil
	})
	if err != nil {
		return timeline.Info{}, false, fmt.Errorf("lookup %s: %w", key.Path, err)
	}
	if !found || size != key.Size || mtime != key.ModTime.UnixNano() {
		return timeline.Info{}, false, nil
	}
	info.Duration = time.Duration(durNS)
	info.IsImage = isImage
	info.HasVideo = hasVideo
	info.HasAudio = hasAudio
	return info, true, nil
}

// Put stores info for key, replacing any previous entry for the path.
func (s *Store) Put(ctx context.Context, key Key, info timeline.Info) error {
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, `INSERT INTO probes (path, size_bytes, mtime_ns, width, height,
			duration_ns, fps_num, fps_den, sample_rate, channels, is_image, has_video, has_audio, probed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				size_bytes = excluded.size_bytes,
				mtime_ns = excluded.mtime_ns,
				width = excluded.width,
				height = excluded.height,
				duration_ns = excluded.duration_ns,
				fps_num = excluded.fps_num,
				fps_den = excluded.fps_den,
				sample_rate = excluded.sample_rate,
				channels = excluded.channels,
				is_image = excluded.is_image,
				has_video = excluded.has_video,
				has_audio = excluded.has_audio,
				probed_at = excluded.probed_at`,
			key.Path, key.Size, key.ModTime.UnixNano(), info.Width, info.Height,
			int64(info.Duration), info.FrameRate.Num, info.FrameRate.Den, info.SampleRate, info.Channels,
			info.IsImage, info.HasVideo, info.HasAudio, time.Now().UTC().Format(time.RFC3339))
		return execErr
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", key.Path, err)
	}
	return nil
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var n int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM probes").Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count probes: %w", err)
	}
	return n, nil
}

// Clear removes every cached entry.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, "DELETE FROM probes")
		return execErr
	})
	if err != nil {
		return fmt.Errorf("clear probes: %w", err)
	}
	return nil
}
