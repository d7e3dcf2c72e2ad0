package recording

import (
	"strings"
	"time"
)

// SlideEvent is one slide being shown between In and Out.
type SlideEvent struct {
	// Href is the image reference as written in shapes.svg, relative to the
	// presentation directory.
	Href string
	// Path is Href resolved against the presentation directory.
	Path string
	In   time.Duration
	Out  time.Duration
}

// Duration returns how long the slide is shown.
func (e SlideEvent) Duration() time.Duration {
	return e.Out - e.In
}

// IsDeskshare reports whether the slide is the placeholder shown while the
// presenter shares their desktop.
func (e SlideEvent) IsDeskshare() bool {
	return IsDesksharePlaceholder(e.Href)
}

// IsDesksharePlaceholder reports whether href names the desktop-share
// placeholder image.
func IsDesksharePlaceholder(href string) bool {
	return strings.HasSuffix(strings.TrimSpace(href), "/deskshare.png")
}

// DeskshareEvent is one desktop-share session, in seconds-converted time.
type DeskshareEvent struct {
	Start time.Duration
	Stop  time.Duration
}

// Meeting carries the descriptive metadata of a recording.
type Meeting struct {
	ID        string
	Name      string
	StartTime time.Time
}
