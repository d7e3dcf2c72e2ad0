package presentation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"lectern/internal/faults"
	"lectern/internal/timeline"
)

// Options control canvas geometry and the viewing window.
type Options struct {
	Width         int
	Height        int
	WebcamPercent int
	// Start and End are window bounds in seconds. A nil End leaves the
	// window open.
	Start    *float64
	End      *float64
	Backdrop string
}

// Layout holds the geometry derived once per run.
type Layout struct {
	Width        int
	Height       int
	CameraWidth  int
	ContentWidth int
	Window       timeline.Window
	Backdrop     string
}

// NewLayout validates opts and derives the camera/content split and window.
func NewLayout(opts Options) (Layout, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return Layout{}, faults.Wrap(faults.ErrConfiguration, "presentation", "layout",
			fmt.Sprintf("canvas must be positive, got %dx%d", opts.Width, opts.Height), nil)
	}
	if opts.WebcamPercent < 0 || opts.WebcamPercent > 99 {
		return Layout{}, faults.Wrap(faults.ErrConfiguration, "presentation", "layout",
			fmt.Sprintf("webcam percent must be within 0-99, got %d", opts.WebcamPercent), nil)
	}

	start, err := seconds("start", opts.Start)
	if err != nil {
		return Layout{}, err
	}
	var end *time.Duration
	if opts.End != nil {
		d, err := seconds("end", opts.End)
		if err != nil {
			return Layout{}, err
		}
		end = &d
	}
	window, err := timeline.NewWindow(start, end)
	if err != nil {
		return Layout{}, err
	}

	camera := int(math.Round(float64(opts.Width) * float64(opts.WebcamPercent) / 100))
	return Layout{
		Width:        opts.Width,
		Height:       opts.Height,
		CameraWidth:  camera,
		ContentWidth: opts.Width - camera,
		Window:       window,
		Backdrop:     strings.TrimSpace(opts.Backdrop),
	}, nil
}

func seconds(name string, value *float64) (time.Duration, error) {
	if value == nil {
		return 0, nil
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		return 0, faults.Wrap(faults.ErrInvalidWindow, "presentation", "layout",
			fmt.Sprintf("%s is not a finite number of seconds", name), nil)
	}
	return timeline.Seconds(*value), nil
}

func (l Layout) String() string {
	return fmt.Sprintf("%dx%d camera=%d content=%d window=%s", l.Width, l.Height, l.CameraWidth, l.ContentWidth, l.Window)
}
