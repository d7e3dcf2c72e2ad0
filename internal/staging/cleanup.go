package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lectern/internal/logging"
	"lectern/internal/recording"
)

// CleanStaleResult contains the outcome of a stale directory cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanOptions select which directories CleanStale removes.
type CleanOptions struct {
	// Prefix limits removal to directory names starting with it. Required.
	Prefix string
	MaxAge time.Duration
	// DryRun reports candidates without removing them.
	DryRun bool
}

// CleanStale removes directories under root whose name starts with
// opts.Prefix and that were last modified more than opts.MaxAge ago.
func CleanStale(ctx context.Context, root string, opts CleanOptions, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	root = strings.TrimSpace(root)
	if root == "" || opts.Prefix == "" {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-opts.MaxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: ctx.Err()})
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), opts.Prefix) {
			continue
		}

		dirPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if opts.DryRun {
			result.Removed = append(result.Removed, dirPath)
			continue
		}
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale fetch directory", "staging_cleanup_failed",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on "+root),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed stale fetch directory",
			logging.String("path", dirPath),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

// DirInfo contains metadata about a directory under the materials root.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
	// Recording is set when the directory holds a metadata.xml.
	Recording bool
}

// ListDirectories returns the directories under root, newest first.
func ListDirectories(root string) ([]DirInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		dirPath := filepath.Join(root, entry.Name())
		size, _ := dirSize(dirPath)
		_, metaErr := os.Stat(filepath.Join(dirPath, recording.MetadataFile))

		dirs = append(dirs, DirInfo{
			Name:      entry.Name(),
			Path:      dirPath,
			ModTime:   info.ModTime(),
			Size:      size,
			Recording: metaErr == nil,
		})
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return dirs[i].ModTime.After(dirs[j].ModTime)
	})

	return dirs, nil
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
