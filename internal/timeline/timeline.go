package timeline

import (
	"fmt"
	"slices"
	"time"
)

// Layer priorities. Lower values render on top.
const (
	PriorityCamera    = 0
	PrioritySlides    = 1
	PriorityDeskshare = 2
	PriorityBackdrop  = 3
)

// Rect is a screen rectangle in canvas pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// PlacedClip is a window-adjusted, screen-positioned clip.
type PlacedClip struct {
	Asset    *Asset
	Start    time.Duration
	InPoint  time.Duration
	Duration time.Duration
	Rect     Rect
}

// End returns the timeline position where the clip stops.
func (c PlacedClip) End() time.Duration {
	return c.Start + c.Duration
}

// Layer is a named, ordered bucket of clips.
type Layer struct {
	Name     string
	Priority int
	Clips    []PlacedClip
}

// Place trims the clip against the window and appends it when it survives.
// It reports whether a clip was added.
func (l *Layer) Place(w Window, asset *Asset, start, inPoint, duration time.Duration, rect Rect) bool {
	p, ok := Trim(w, start, inPoint, duration, asset.IsImage())
	if !ok {
		return false
	}
	l.Clips = append(l.Clips, PlacedClip{
		Asset:    asset,
		Start:    p.Start,
		InPoint:  p.InPoint,
		Duration: p.Duration,
		Rect:     rect,
	})
	return true
}

// VideoCaps are the restriction caps applied to the video track.
type VideoCaps struct {
	Width     int
	Height    int
	FrameRate Rational
}

// AudioCaps are the restriction caps applied to the audio track.
type AudioCaps struct {
	Rate     int
	Channels int
}

// Timeline aggregates layers, the assets they reference, and track caps.
type Timeline struct {
	Video VideoCaps
	Audio AudioCaps

	layers []*Layer
	assets []*Asset
	known  map[string]struct{}
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{known: make(map[string]struct{})}
}

// AddLayer creates a layer with the given name and priority. Names and
// priorities must be unique within a timeline.
func (t *Timeline) AddLayer(name string, priority int) (*Layer, error) {
	for _, existing := range t.layers {
		if existing.Name == name {
			return nil, fmt.Errorf("layer %q already exists", name)
		}
		if existing.Priority == priority {
			return nil, fmt.Errorf("layer priority %d already used by %q", priority, existing.Name)
		}
	}
	layer := &Layer{Name: name, Priority: priority}
	t.layers = append(t.layers, layer)
	return layer, nil
}

// Layer returns the layer with the given name.
func (t *Timeline) Layer(name string) (*Layer, bool) {
	for _, layer := range t.layers {
		if layer.Name == name {
			return layer, true
		}
	}
	return nil, false
}

// Layers returns all layers ordered by priority, top-most first.
func (t *Timeline) Layers() []*Layer {
	out := slices.Clone(t.layers)
	slices.SortStableFunc(out, func(a, b *Layer) int { return a.Priority - b.Priority })
	return out
}

// RegisterAsset records an asset as part of the project. Registering the
// same path twice is a no-op.
func (t *Timeline) RegisterAsset(asset *Asset) {
	if asset == nil {
		return
	}
	if t.known == nil {
		t.known = make(map[string]struct{})
	}
	if _, ok := t.known[asset.Path]; ok {
		return
	}
	t.known[asset.Path] = struct{}{}
	t.assets = append(t.assets, asset)
}

// Assets returns registered assets in registration order.
func (t *Timeline) Assets() []*Asset {
	return slices.Clone(t.assets)
}

// Duration returns the end of the last clip across all layers.
func (t *Timeline) Duration() time.Duration {
	var end time.Duration
	for _, layer := range t.layers {
		for _, clip := range layer.Clips {
			end = max(end, clip.End())
		}
	}
	return end
}

// ClipCount returns the total number of placed clips.
func (t *Timeline) ClipCount() int {
	n := 0
	for _, layer := range t.layers {
		n += len(layer.Clips)
	}
	return n
}

// Persister finalizes and serializes a timeline. Implementations wrap their
// failures with faults.ErrPersistence.
type Persister interface {
	Commit() error
	Save(path string) error
}
