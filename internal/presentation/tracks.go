package presentation

import (
	"context"

	"lectern/internal/faults"
	"lectern/internal/logging"
	"lectern/internal/timeline"
)

// buildCamera places the full webcam capture in the bottom-right corner,
// scaled to the camera width.
func buildCamera(_ context.Context, run *assembly, layer *timeline.Layer) error {
	height, err := run.webcam.ScaledHeight(run.layout.CameraWidth)
	if err != nil {
		return faults.Wrap(faults.ErrAssetUnavailable, "presentation", "camera", run.webcam.Path, err)
	}
	rect := timeline.Rect{
		X:      run.layout.Width - run.layout.CameraWidth,
		Y:      run.layout.Height - height,
		Width:  run.layout.CameraWidth,
		Height: height,
	}
	if !layer.Place(run.layout.Window, run.webcam, 0, 0, run.webcam.Duration(), rect) {
		run.skip(layer.Name)
	}
	return nil
}

// buildSlides places each slide image at the origin for its display interval.
// Deskshare placeholder slides are skipped; the deskshare layer covers them.
func buildSlides(ctx context.Context, run *assembly, layer *timeline.Layer) error {
	events, err := run.src.Slides(ctx)
	if err != nil {
		return err
	}
	logger := logging.WithContext(ctx, run.logger)
	for _, event := range events {
		if event.IsDeskshare() {
			logger.Debug("deskshare placeholder slide skipped", logging.String("href", event.Href))
			run.skip(layer.Name)
			continue
		}
		asset, err := run.resolver.Resolve(ctx, event.Path)
		if err != nil {
			return err
		}
		height, err := asset.ScaledHeight(run.layout.ContentWidth)
		if err != nil {
			return faults.Wrap(faults.ErrAssetUnavailable, "presentation", "slides", asset.Path, err)
		}
		rect := timeline.Rect{Width: run.layout.ContentWidth, Height: height}
		if !layer.Place(run.layout.Window, asset, event.In, 0, event.Duration(), rect) {
			run.skip(layer.Name)
		}
	}
	return nil
}

// buildDeskshare places excerpts of the desktop-share capture. Events that
// start past the end of the capture are stale and skipped; stops are clamped
// to the capture length.
func buildDeskshare(ctx context.Context, run *assembly, layer *timeline.Layer) error {
	events, err := run.src.DeskshareEvents(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	asset, err := run.resolver.Resolve(ctx, run.src.DeskshareVideoPath())
	if err != nil {
		return err
	}
	height, err := asset.ScaledHeight(run.layout.ContentWidth)
	if err != nil {
		return faults.Wrap(faults.ErrAssetUnavailable, "presentation", "deskshare", asset.Path, err)
	}
	rect := timeline.Rect{Width: run.layout.ContentWidth, Height: height}

	logger := logging.WithContext(ctx, run.logger)
	total := asset.Duration()
	for _, event := range events {
		if event.Start > total {
			logging.WarnWithContext(logger, "deskshare event starts after capture end", "deskshare_event_stale",
				logging.Duration("start", event.Start),
				logging.Duration("capture_duration", total),
				logging.String(logging.FieldImpact, "event omitted from the deskshare layer"),
				logging.String(logging.FieldErrorHint, "deskshare.xml references time past the recorded video"))
			run.skip(layer.Name)
			continue
		}
		stop := min(event.Stop, total)
		if !layer.Place(run.layout.Window, asset, event.Start, event.Start, stop-event.Start, rect) {
			run.skip(layer.Name)
		}
	}
	return nil
}

// buildBackdrop fills the canvas with the configured still for the length of
// the webcam capture.
func buildBackdrop(ctx context.Context, run *assembly, layer *timeline.Layer) error {
	if run.layout.Backdrop == "" {
		return nil
	}
	asset, err := run.resolver.Resolve(ctx, run.layout.Backdrop)
	if err != nil {
		return err
	}
	rect := timeline.Rect{Width: run.layout.Width, Height: run.layout.Height}
	if !layer.Place(run.layout.Window, asset, 0, 0, run.webcam.Duration(), rect) {
		run.skip(layer.Name)
	}
	return nil
}
