package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"lectern/internal/faults"
	"lectern/internal/fileutil"
	"lectern/internal/logging"
	"lectern/internal/recording"
)

const (
	lockFile       = ".lectern-fetch.lock"
	dirStampLayout = "2006-01-02-15-04-05"
	fallbackSlug   = "recording"
	tempDirPattern = TempDirPrefix + "*"
)

// TempDirPrefix names the temporary directories a fetch downloads into
// before moving them below the materials directory.
const TempDirPrefix = "lectern-fetch-"

// OptionalComponents are fetched when present; a missing one is not an error.
var OptionalComponents = []string{
	"panzooms.xml",
	"cursor.xml",
	"deskshare.xml",
	"presentation_text.json",
	"captions.json",
	"slides_new.xml",
	"video/webcams.webm",
	"video/webcams.mp4",
	"deskshare/deskshare.webm",
	"deskshare/deskshare.mp4",
}

// ComponentResult records the outcome for one file of the recording.
type ComponentResult struct {
	Path     string
	Optional bool
	Bytes    int64
	Err      error
}

// Fetched reports whether the component was downloaded.
func (r ComponentResult) Fetched() bool {
	return r.Err == nil
}

// Options configure a Downloader.
type Options struct {
	// OutputDir receives the files directly when set.
	OutputDir string
	// MaterialsDir is where completed downloads are moved when OutputDir is empty.
	MaterialsDir string
	UserAgent    string
	Timeout      time.Duration
	MaxResumes   int
	HTTPClient   *http.Client
	Logger       *slog.Logger
	Now          func() time.Time
}

// Result summarizes a completed download.
type Result struct {
	Dir        string
	Playback   Playback
	Meeting    recording.Meeting
	Components []ComponentResult
}

// Skipped returns the optional components that were not fetched.
func (r *Result) Skipped() []ComponentResult {
	var out []ComponentResult
	for _, c := range r.Components {
		if !c.Fetched() {
			out = append(out, c)
		}
	}
	return out
}

// Downloader mirrors one recording to disk.
type Downloader struct {
	playback Playback
	opts     Options
	logger   *slog.Logger
}

// NewDownloader validates the playback URL.
func NewDownloader(playbackURL string, opts Options) (*Downloader, error) {
	playback, err := ParsePlaybackURL(playbackURL)
	if err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.OutputDir) == "" && strings.TrimSpace(opts.MaterialsDir) == "" {
		opts.MaterialsDir = "materials"
	}
	return &Downloader{
		playback: playback,
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "fetch"),
	}, nil
}

// Playback returns the parsed playback URL.
func (d *Downloader) Playback() Playback {
	return d.playback
}

// Download fetches the recording. Required files abort the run on failure;
// optional components are reported in the result.
func (d *Downloader) Download(ctx context.Context) (*Result, error) {
	logger := logging.WithContext(ctx, d.logger)

	outDir, temporary, err := d.prepareDir()
	if err != nil {
		return nil, err
	}
	if temporary {
		defer func() {
			if outDir != "" {
				_ = os.RemoveAll(outDir)
			}
		}()
	}

	lockPath := filepath.Join(outDir, lockFile)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "fetch", "lock", outDir, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrConfiguration, "fetch", "lock", outDir+" is in use by another fetch", nil)
	}
	unlock := func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release fetch lock", logging.String("lock", lockPath), logging.Error(err))
		}
		_ = os.Remove(lockPath)
	}

	result, err := d.fetchAll(ctx, outDir)
	unlock()
	if err != nil {
		return nil, err
	}

	finalDir := outDir
	if temporary {
		finalDir = filepath.Join(d.opts.MaterialsDir, d.dirName(result.Meeting))
		if abs, err := filepath.Abs(finalDir); err == nil {
			finalDir = abs
		}
		if err := fileutil.MoveDir(outDir, finalDir); err != nil {
			return nil, faults.Wrap(faults.ErrTransport, "fetch", "move", finalDir, err)
		}
		outDir = ""
	}
	result.Dir = finalDir

	logger.Info("recording downloaded",
		logging.String(logging.FieldEventType, "download_complete"),
		logging.String("dir", finalDir),
		logging.Int("components", len(result.Components)),
		logging.Int("skipped", len(result.Skipped())))
	return result, nil
}

func (d *Downloader) prepareDir() (string, bool, error) {
	if dir := strings.TrimSpace(d.opts.OutputDir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", false, faults.Wrap(faults.ErrConfiguration, "fetch", "output dir", dir, err)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", false, faults.Wrap(faults.ErrConfiguration, "fetch", "output dir", abs, err)
		}
		return abs, false, nil
	}
	tmp, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		return "", false, faults.Wrap(faults.ErrConfiguration, "fetch", "temp dir", "", err)
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		_ = os.RemoveAll(tmp)
		return "", false, faults.Wrap(faults.ErrConfiguration, "fetch", "temp dir", tmp, err)
	}
	return tmp, true, nil
}

func (d *Downloader) fetchAll(ctx context.Context, outDir string) (*Result, error) {
	logger := logging.WithContext(ctx, d.logger)
	client := NewClient(d.playback.Base, outDir,
		WithHTTPClient(d.opts.HTTPClient),
		WithUserAgent(d.opts.UserAgent),
		WithMaxResumes(d.opts.MaxResumes),
		WithLogger(d.opts.Logger),
	)
	if d.opts.HTTPClient == nil && d.opts.Timeout > 0 {
		WithTimeout(d.opts.Timeout)(client)
	}

	result := &Result{Playback: d.playback}
	required := func(rel string) (string, error) {
		local, n, err := client.Get(ctx, rel)
		if err != nil {
			return "", err
		}
		result.Components = append(result.Components, ComponentResult{Path: rel, Bytes: n})
		return local, nil
	}

	metadataPath, err := required(recording.MetadataFile)
	if err != nil {
		return nil, err
	}
	meeting, err := parseFile(metadataPath, recording.ParseMetadata)
	if err != nil {
		return nil, err
	}
	result.Meeting = meeting

	shapesPath, err := required(recording.ShapesFile)
	if err != nil {
		return nil, err
	}
	refs, err := parseFile(shapesPath, recording.ImageRefs)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if _, err := required(ref); err != nil {
			return nil, err
		}
	}

	for _, rel := range OptionalComponents {
		if err := ctx.Err(); err != nil {
			return nil, faults.Wrap(faults.ErrTransport, "fetch", "optional", rel, err)
		}
		_, n, err := client.Get(ctx, rel)
		component := ComponentResult{Path: rel, Optional: true, Bytes: n, Err: err}
		result.Components = append(result.Components, component)
		if err != nil {
			reason := "unavailable"
			var status *StatusError
			if errors.As(err, &status) && status.NotFound() {
				reason = "not published"
			}
			logging.WarnWithContext(logger, "optional component skipped", "fetch_component_skipped",
				logging.String("file", rel),
				logging.String("reason", reason),
				logging.Error(err),
				logging.String(logging.FieldImpact, "recording is usable without "+rel),
				logging.String(logging.FieldErrorHint, "ignore unless the built project is missing this content"))
		}
	}
	return result, nil
}

func (d *Downloader) dirName(meeting recording.Meeting) string {
	start := meeting.StartTime
	if start.IsZero() {
		start = d.opts.Now()
	}
	slug := Slug(meeting.Name)
	if slug == "" {
		slug = Slug(d.playback.MeetingID)
	}
	if slug == "" {
		slug = fallbackSlug
	}
	return fmt.Sprintf("%s-%s", start.Local().Format(dirStampLayout), slug)
}

func parseFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, faults.Wrap(faults.ErrMalformedMetadata, "fetch", "open", path, err)
	}
	defer f.Close()
	return parse(f)
}
