package xges

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"lectern/internal/faults"
	"lectern/internal/logging"
	"lectern/internal/timeline"
)

const clipType = "GESUriClip"

// Track identifiers used by every saved project.
const (
	videoTrackID = 0
	audioTrackID = 1
)

// Options carry project-level metadata.
type Options struct {
	Title  string
	Author string
	Logger *slog.Logger
}

// Project persists one timeline. It is not safe for concurrent use.
type Project struct {
	tl     *timeline.Timeline
	opts   Options
	logger *slog.Logger

	doc       *document
	clips     int
	duration  time.Duration
	committed bool
}

var _ timeline.Persister = (*Project)(nil)

// NewProject wraps tl for persistence.
func NewProject(tl *timeline.Timeline, opts Options) *Project {
	return &Project{
		tl:     tl,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "xges"),
	}
}

// Commit validates the timeline and freezes its serialized form. Clips are
// numbered in layer priority order.
func (p *Project) Commit() error {
	if p.tl == nil {
		return persistence("commit", "no timeline", nil)
	}
	if p.tl.Video.Width <= 0 || p.tl.Video.Height <= 0 {
		return persistence("commit", fmt.Sprintf("video caps %dx%d are not positive", p.tl.Video.Width, p.tl.Video.Height), nil)
	}

	assets := p.tl.Assets()
	seen := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		seen[asset.Path] = struct{}{}
	}

	var layers []layerElement
	nextID := 0
	for _, layer := range p.tl.Layers() {
		el := layerElement{
			Priority:   layer.Priority,
			Properties: newStructure("properties").boolean("auto-transition", false).String(),
			Metadatas:  newStructure("metadatas").str("video::name", layer.Name).String(),
		}
		for i, clip := range layer.Clips {
			if clip.Asset == nil {
				return persistence("commit", fmt.Sprintf("layer %s clip %d has no asset", layer.Name, i), nil)
			}
			if clip.Start < 0 || clip.InPoint < 0 || clip.Duration < 0 {
				return persistence("commit", fmt.Sprintf("layer %s clip %d has negative timing", layer.Name, i), nil)
			}
			if _, ok := seen[clip.Asset.Path]; !ok {
				seen[clip.Asset.Path] = struct{}{}
				assets = append(assets, clip.Asset)
			}
			el.Clips = append(el.Clips, clipFor(nextID, layer.Priority, clip))
			nextID++
		}
		layers = append(layers, el)
	}

	duration := p.tl.Duration()
	doc := &document{
		Version: formatVersion,
		Project: projectElement{
			Properties: newStructure("properties").String(),
			Metadatas: newStructure("metadatas").
				str("name", p.opts.Title).
				str("author", p.opts.Author).String(),
			Resources: resources{Assets: assetElements(assets)},
			Timeline: timelineElement{
				Properties: newStructure("properties").
					boolean("auto-transition", false).
					unsigned("snapping-distance", 0).String(),
				Metadatas: newStructure("metadatas").unsigned("duration", uint64(duration)).String(),
				Tracks:    tracks(p.tl),
				Layers:    layers,
			},
		},
	}

	p.doc = doc
	p.clips = nextID
	p.duration = duration
	p.committed = true
	p.logger.Debug("project committed",
		logging.String(logging.FieldEventType, "project_committed"),
		logging.Int("clips", nextID),
		logging.Int("assets", len(assets)),
		logging.Duration("duration", duration))
	return nil
}

// Encode writes the committed project document to w.
func (p *Project) Encode(w io.Writer) error {
	if !p.committed {
		return persistence("encode", "project has not been committed", nil)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return persistence("encode", "write header", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(p.doc); err != nil {
		return persistence("encode", "marshal document", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return persistence("encode", "write trailer", err)
	}
	return nil
}

// Save writes the committed project to path. The file is replaced atomically
// so a failed save never leaves a truncated project behind.
func (p *Project) Save(path string) error {
	if !p.committed {
		return persistence("save", "project has not been committed", nil)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return persistence("save", "empty destination path", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return persistence("save", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence("save", "create "+dir, err)
	}

	lockPath := abs + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return persistence("save", "lock "+abs, err)
	}
	if !ok {
		return persistence("save", abs+" is being written by another process", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release project lock", logging.String("lock", lockPath), logging.Error(err))
		}
		_ = os.Remove(lockPath)
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+"-*.tmp")
	if err != nil {
		return persistence("save", "create temp file", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := p.Encode(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return persistence("save", "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return persistence("save", "close temp file", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return persistence("save", "chmod temp file", err)
	}
	if err := os.Rename(tmpPath, abs); err != nil {
		_ = os.Remove(tmpPath)
		return persistence("save", "rename temp file", err)
	}

	p.logger.Info("project saved",
		logging.String(logging.FieldEventType, "project_saved"),
		logging.String("path", abs),
		logging.Int("clips", p.clips),
		logging.Duration("duration", p.duration))
	return nil
}

// Duration returns the committed timeline length.
func (p *Project) Duration() time.Duration {
	return p.duration
}

// ClipCount returns the number of clips written by Save.
func (p *Project) ClipCount() int {
	return p.clips
}

func tracks(tl *timeline.Timeline) []trackElement {
	video := newStructure("video/x-raw(ANY)").
		integer("width", tl.Video.Width).
		integer("height", tl.Video.Height)
	if tl.Video.FrameRate.Valid() {
		video.fraction("framerate", tl.Video.FrameRate.Num, tl.Video.FrameRate.Den)
	}
	audio := newStructure("audio/x-raw(ANY)")
	if tl.Audio.Rate > 0 {
		audio.integer("rate", tl.Audio.Rate)
	}
	if tl.Audio.Channels > 0 {
		audio.integer("channels", tl.Audio.Channels)
	}

	return []trackElement{
		{
			Caps:      "video/x-raw(ANY)",
			TrackType: trackTypeVideo,
			TrackID:   videoTrackID,
			Properties: newStructure("properties").
				nested("restriction-caps", video.caps()).
				boolean("mixing", true).String(),
			Metadatas: newStructure("metadatas").String(),
		},
		{
			Caps:      "audio/x-raw(ANY)",
			TrackType: trackTypeAudio,
			TrackID:   audioTrackID,
			Properties: newStructure("properties").
				nested("restriction-caps", audio.caps()).
				boolean("mixing", true).String(),
			Metadatas: newStructure("metadatas").String(),
		},
	}
}

func trackTypes(asset *timeline.Asset) int {
	if asset.IsImage() {
		return trackTypeVideo
	}
	types := 0
	if asset.Info.HasVideo {
		types |= trackTypeVideo
	}
	if asset.Info.HasAudio {
		types |= trackTypeAudio
	}
	if types == 0 {
		types = trackTypeVideo
	}
	return types
}

func assetElements(assets []*timeline.Asset) []assetElement {
	out := make([]assetElement, 0, len(assets))
	for _, asset := range assets {
		props := newStructure("properties").integer("supported-formats", trackTypes(asset))
		if !asset.IsImage() {
			props.unsigned("duration", uint64(max(asset.Duration(), 0)))
		}
		out = append(out, assetElement{
			ID:              asset.URI(),
			ExtractableType: clipType,
			Properties:      props.String(),
			Metadatas:       newStructure("metadatas").String(),
		})
	}
	return out
}

func clipFor(id, priority int, clip timeline.PlacedClip) clipElement {
	types := trackTypes(clip.Asset)
	el := clipElement{
		ID:            id,
		AssetID:       clip.Asset.URI(),
		TypeName:      clipType,
		LayerPriority: priority,
		TrackTypes:    types,
		Start:         int64(clip.Start),
		Duration:      int64(clip.Duration),
		InPoint:       int64(clip.InPoint),
		Properties: newStructure("properties").
			str("name", fmt.Sprintf("uriclip%d", id)).
			boolean("mute", false).
			boolean("is-image", clip.Asset.IsImage()).String(),
		Metadatas: newStructure("metadatas").String(),
	}
	if types&trackTypeVideo != 0 {
		el.Sources = append(el.Sources, sourceElement{
			TrackID: videoTrackID,
			ChildrenProperties: newStructure("properties").
				double("alpha", 1).
				integer("posx", clip.Rect.X).
				integer("posy", clip.Rect.Y).
				integer("width", clip.Rect.Width).
				integer("height", clip.Rect.Height).String(),
		})
	}
	if types&trackTypeAudio != 0 {
		el.Sources = append(el.Sources, sourceElement{
			TrackID:            audioTrackID,
			ChildrenProperties: newStructure("properties").double("volume", 1).boolean("mute", false).String(),
		})
	}
	return el
}

func persistence(operation, message string, err error) error {
	return faults.Wrap(faults.ErrPersistence, "xges", operation, message, err)
}
