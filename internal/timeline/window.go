package timeline

import (
	"fmt"
	"time"

	"lectern/internal/faults"
)

// Window is the global viewing range. When HasEnd is false the window is
// open-ended and only Start trims clips.
type Window struct {
	Start  time.Duration
	End    time.Duration
	HasEnd bool
}

// NewWindow builds a window from an optional end and validates it.
func NewWindow(start time.Duration, end *time.Duration) (Window, error) {
	w := Window{Start: start}
	if end != nil {
		w.End = *end
		w.HasEnd = true
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate enforces start >= 0 and end >= start.
func (w Window) Validate() error {
	if w.Start < 0 {
		return faults.Wrap(faults.ErrInvalidWindow, "timeline", "window", fmt.Sprintf("negative start %s", w.Start), nil)
	}
	if w.HasEnd && w.End < w.Start {
		return faults.Wrap(faults.ErrInvalidWindow, "timeline", "window", fmt.Sprintf("end %s before start %s", w.End, w.Start), nil)
	}
	return nil
}

// Length returns the window span and whether it is bounded.
func (w Window) Length() (time.Duration, bool) {
	if !w.HasEnd {
		return 0, false
	}
	return w.End - w.Start, true
}

func (w Window) String() string {
	if !w.HasEnd {
		return fmt.Sprintf("[%s, open)", w.Start)
	}
	return fmt.Sprintf("[%s, %s)", w.Start, w.End)
}

// Placement is a clip's timing after window adjustment.
type Placement struct {
	Start    time.Duration
	InPoint  time.Duration
	Duration time.Duration
}

// Trim maps a clip onto the window. It returns false when the clip lies
// entirely outside the window and must not be placed.
//
// Clips that start before the window are shortened by the overhang; for
// time-based media the in-point advances by the same amount, stills keep
// theirs since they have no timeline to skip into.
func Trim(w Window, start, inPoint, duration time.Duration, isImage bool) (Placement, bool) {
	if w.HasEnd {
		if start > w.End {
			return Placement{}, false
		}
		duration = min(duration, w.End-start)
	}
	if start+duration < w.Start {
		return Placement{}, false
	}

	start -= w.Start
	if start < 0 {
		duration += start
		if !isImage {
			inPoint += -start
		}
		start = 0
	}
	return Placement{Start: start, InPoint: inPoint, Duration: duration}, true
}
