package recording

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"lectern/internal/faults"
	"lectern/internal/logging"
)

// Well-known files inside a presentation directory.
const (
	ShapesFile    = "shapes.svg"
	DeskshareFile = "deskshare.xml"
	MetadataFile  = "metadata.xml"
)

var (
	webcamCandidates    = []string{"video/webcams.webm", "video/webcams.mp4"}
	deskshareCandidates = []string{"deskshare/deskshare.webm", "deskshare/deskshare.mp4"}
)

// Recording is an opened presentation directory.
type Recording struct {
	dir    string
	logger *slog.Logger
}

// Open validates that dir is a directory and returns a handle for it.
func Open(dir string, logger *slog.Logger) (*Recording, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "recording", "open", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "recording", "open", abs, err)
	}
	if !info.IsDir() {
		return nil, faults.Wrap(faults.ErrAssetUnavailable, "recording", "open", abs+" is not a directory", nil)
	}
	return &Recording{dir: abs, logger: logging.NewComponentLogger(logger, "recording")}, nil
}

// Dir returns the absolute presentation directory.
func (r *Recording) Dir() string {
	return r.dir
}

// Path resolves a path relative to the presentation directory.
func (r *Recording) Path(rel string) string {
	return filepath.Join(r.dir, filepath.FromSlash(rel))
}

// WebcamPath returns the webcam capture, preferring WebM. When neither
// container exists the WebM path is returned so resolution fails naming it.
func (r *Recording) WebcamPath() string {
	return r.firstExisting(webcamCandidates)
}

// DeskshareVideoPath returns the desktop-share capture, preferring WebM.
func (r *Recording) DeskshareVideoPath() string {
	return r.firstExisting(deskshareCandidates)
}

func (r *Recording) firstExisting(candidates []string) string {
	for _, rel := range candidates {
		p := r.Path(rel)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return r.Path(candidates[0])
}

// Slides parses shapes.svg and resolves each slide against the directory.
func (r *Recording) Slides(ctx context.Context) ([]SlideEvent, error) {
	f, err := os.Open(r.Path(ShapesFile))
	if err != nil {
		return nil, malformed(ShapesFile, "open", err)
	}
	defer f.Close()

	events, err := ParseSlides(f)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Path = r.Path(events[i].Href)
	}
	logging.WithContext(ctx, r.logger).Debug("slides parsed", logging.Int("events", len(events)))
	return events, nil
}

// DeskshareEvents parses deskshare.xml. A recording without desktop sharing
// has no such file; that yields no events rather than an error.
func (r *Recording) DeskshareEvents(ctx context.Context) ([]DeskshareEvent, error) {
	f, err := os.Open(r.Path(DeskshareFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WithContext(ctx, r.logger).Info("recording has no desktop-share events",
				logging.String(logging.FieldEventType, "deskshare_absent"),
				logging.String("file", DeskshareFile))
			return nil, nil
		}
		return nil, malformed(DeskshareFile, "open", err)
	}
	defer f.Close()

	events, err := ParseDeskshare(f)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, r.logger).Debug("deskshare events parsed", logging.Int("events", len(events)))
	return events, nil
}

// Meeting parses metadata.xml.
func (r *Recording) Meeting() (Meeting, error) {
	f, err := os.Open(r.Path(MetadataFile))
	if err != nil {
		return Meeting{}, malformed(MetadataFile, "open", err)
	}
	defer f.Close()
	return ParseMetadata(f)
}

func (r *Recording) String() string {
	return fmt.Sprintf("recording(%s)", r.dir)
}
