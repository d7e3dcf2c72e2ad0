package testsupport

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"lectern/internal/timeline"
)

// FakeProber returns canned media info keyed by file base name and counts
// how often each path was probed.
type FakeProber struct {
	mu    sync.Mutex
	media map[string]timeline.Info
	calls map[string]int
	err   error
}

// NewFakeProber builds a prober with no known media.
func NewFakeProber() *FakeProber {
	return &FakeProber{media: make(map[string]timeline.Info), calls: make(map[string]int)}
}

// Set registers info for files whose base name is name.
func (p *FakeProber) Set(name string, info timeline.Info) *FakeProber {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.media[name] = info
	return p
}

// FailWith makes every probe return err.
func (p *FakeProber) FailWith(err error) *FakeProber {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	return p
}

// Probe implements assets.Prober.
func (p *FakeProber) Probe(_ context.Context, path string) (timeline.Info, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[path]++
	if p.err != nil {
		return timeline.Info{}, p.err
	}
	info, ok := p.media[filepath.Base(path)]
	if !ok {
		return timeline.Info{}, fmt.Errorf("fake prober: no media registered for %s", filepath.Base(path))
	}
	return info, nil
}

// Calls returns how often path was probed.
func (p *FakeProber) Calls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

// TotalCalls returns the number of probes across all paths.
func (p *FakeProber) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

// Webcam returns info for a typical webcam capture of the given length.
func Webcam(duration time.Duration) timeline.Info {
	return timeline.Info{
		Width:      640,
		Height:     480,
		Duration:   duration,
		FrameRate:  timeline.Rational{Num: 30, Den: 1},
		SampleRate: 48000,
		Channels:   1,
		HasVideo:   true,
		HasAudio:   true,
	}
}

// ScreenShare returns info for a desktop-share capture of the given length.
func ScreenShare(duration time.Duration) timeline.Info {
	return timeline.Info{
		Width:     1920,
		Height:    1080,
		Duration:  duration,
		FrameRate: timeline.Rational{Num: 5, Den: 1},
		HasVideo:  true,
	}
}

// Still returns info for a still image.
func Still(width, height int) timeline.Info {
	return timeline.Info{Width: width, Height: height, IsImage: true, HasVideo: true}
}
