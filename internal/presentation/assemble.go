package presentation

import (
	"context"
	"log/slog"

	"lectern/internal/assets"
	"lectern/internal/faults"
	"lectern/internal/logging"
	"lectern/internal/recording"
	"lectern/internal/runctx"
	"lectern/internal/timeline"
)

// Layer names as they appear in the saved project.
const (
	LayerCamera    = "Camera"
	LayerSlides    = "Slides"
	LayerDeskshare = "Deskshare"
	LayerBackdrop  = "Backdrop"
)

// Source supplies the media paths and parsed events of one recording.
type Source interface {
	WebcamPath() string
	DeskshareVideoPath() string
	Slides(ctx context.Context) ([]recording.SlideEvent, error)
	DeskshareEvents(ctx context.Context) ([]recording.DeskshareEvent, error)
}

// Result is an assembled timeline plus run statistics.
type Result struct {
	Timeline *timeline.Timeline
	Layout   Layout
	Webcam   *timeline.Asset
	Probes   int
	Skipped  map[string]int
}

// Assembler builds timelines from recordings.
type Assembler struct {
	prober assets.Prober
	logger *slog.Logger
}

// NewAssembler returns an assembler that probes media with prober.
func NewAssembler(prober assets.Prober, logger *slog.Logger) *Assembler {
	return &Assembler{prober: prober, logger: logging.NewComponentLogger(logger, "presentation")}
}

type builder struct {
	name     string
	priority int
	build    func(ctx context.Context, run *assembly, layer *timeline.Layer) error
}

var builders = []builder{
	{name: LayerCamera, priority: timeline.PriorityCamera, build: buildCamera},
	{name: LayerSlides, priority: timeline.PrioritySlides, build: buildSlides},
	{name: LayerDeskshare, priority: timeline.PriorityDeskshare, build: buildDeskshare},
	{name: LayerBackdrop, priority: timeline.PriorityBackdrop, build: buildBackdrop},
}

// assembly is the state shared by the track builders of one run.
type assembly struct {
	src      Source
	layout   Layout
	tl       *timeline.Timeline
	resolver *assets.Resolver
	webcam   *timeline.Asset
	logger   *slog.Logger
	skipped  map[string]int
}

func (a *assembly) skip(layer string) {
	a.skipped[layer]++
}

// Assemble builds the timeline for src. Any failure aborts the run; the
// returned timeline is only meaningful when err is nil.
func (a *Assembler) Assemble(ctx context.Context, src Source, opts Options) (*Result, error) {
	if src == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "presentation", "assemble", "no recording source", nil)
	}
	layout, err := NewLayout(opts)
	if err != nil {
		return nil, err
	}

	tl := timeline.New()
	run := &assembly{
		src:      src,
		layout:   layout,
		tl:       tl,
		resolver: assets.NewResolver(a.prober, tl, a.logger),
		logger:   a.logger,
		skipped:  make(map[string]int),
	}
	logger := logging.WithContext(ctx, a.logger)

	webcam, err := run.resolver.Resolve(ctx, src.WebcamPath())
	if err != nil {
		return nil, err
	}
	run.webcam = webcam
	tl.Video = timeline.VideoCaps{Width: layout.Width, Height: layout.Height, FrameRate: webcam.Info.FrameRate}
	tl.Audio = timeline.AudioCaps{Rate: webcam.Info.SampleRate, Channels: webcam.Info.Channels}
	logger.Info("assembly started",
		logging.String(logging.FieldEventType, "assembly_started"),
		logging.String("layout", layout.String()),
		logging.String("framerate", webcam.Info.FrameRate.String()),
		logging.Duration("webcam_duration", webcam.Duration()))

	for _, b := range builders {
		layer, err := tl.AddLayer(b.name, b.priority)
		if err != nil {
			return nil, faults.Wrap(faults.ErrConfiguration, "presentation", "add layer", b.name, err)
		}
		trackCtx := runctx.WithTrack(ctx, b.name)
		if err := b.build(trackCtx, run, layer); err != nil {
			return nil, err
		}
		logging.WithContext(trackCtx, a.logger).Debug("track built",
			logging.String(logging.FieldEventType, "track_built"),
			logging.Int("clips", len(layer.Clips)),
			logging.Int("skipped", run.skipped[b.name]))
	}

	logger.Info("assembly complete",
		logging.String(logging.FieldEventType, "assembly_complete"),
		logging.Int("clips", tl.ClipCount()),
		logging.Int("assets", len(tl.Assets())),
		logging.Int("probes", run.resolver.Probes()),
		logging.Duration("duration", tl.Duration()))

	return &Result{
		Timeline: tl,
		Layout:   layout,
		Webcam:   webcam,
		Probes:   run.resolver.Probes(),
		Skipped:  run.skipped,
	}, nil
}
