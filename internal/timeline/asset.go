package timeline

import (
	"fmt"
	"math"
	"time"
)

// Rational is a frame rate expressed as numerator/denominator.
type Rational struct {
	Num int
	Den int
}

// Valid reports whether the rational has a usable positive value.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Float returns the rational as a float, or 0 when invalid.
func (r Rational) Float() float64 {
	if !r.Valid() {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Info captures the probed properties of a media file.
type Info struct {
	Width      int
	Height     int
	Duration   time.Duration
	FrameRate  Rational
	SampleRate int
	Channels   int
	IsImage    bool
	HasVideo   bool
	HasAudio   bool
}

// Asset is a resolved media file. Assets are owned by the resolver cache and
// referenced, never copied, by the clips that use them.
type Asset struct {
	Path string
	Info Info
}

// URI returns the file URI the rendering engine uses to identify the asset.
func (a *Asset) URI() string {
	return FileURI(a.Path)
}

// IsImage reports whether the asset is a still image.
func (a *Asset) IsImage() bool {
	return a != nil && a.Info.IsImage
}

// Duration returns the intrinsic duration of the asset.
func (a *Asset) Duration() time.Duration {
	if a == nil {
		return 0
	}
	return a.Info.Duration
}

// ScaledHeight returns the height that keeps the asset's aspect ratio at the
// given width, rounded to the nearest pixel.
func (a *Asset) ScaledHeight(width int) (int, error) {
	if a == nil || a.Info.Width <= 0 || a.Info.Height <= 0 {
		path := ""
		if a != nil {
			path = a.Path
		}
		return 0, fmt.Errorf("asset %s has no video dimensions", path)
	}
	return int(math.Round(float64(width) / float64(a.Info.Width) * float64(a.Info.Height))), nil
}

// Seconds converts fractional seconds to the native time unit.
func Seconds(value float64) time.Duration {
	return time.Duration(math.Round(value * float64(time.Second)))
}
