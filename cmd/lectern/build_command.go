package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lectern/internal/config"
	"lectern/internal/faults"
	"lectern/internal/logging"
	"lectern/internal/preflight"
	"lectern/internal/presentation"
	"lectern/internal/recording"
	"lectern/internal/runctx"
	"lectern/internal/xges"
)

type buildFlags struct {
	start      float64
	end        float64
	width      int
	height     int
	webcamSize int
	backdrop   string
	author     string
	hasStart   bool
	hasEnd     bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [flags] PRESENTATION-DIR OUTPUT",
		Short: "Assemble a downloaded recording into a GES project",
		Long: "Assemble a downloaded recording into a GES project.\n\n" +
			"The webcam, slides, desktop share and optional backdrop each get their own\n" +
			"layer. --start and --end cut the timeline to a window given in seconds.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.hasStart = cmd.Flags().Changed("start")
			flags.hasEnd = cmd.Flags().Changed("end")
			return runBuild(cmd, ctx, flags, args[0], args[1])
		},
	}

	cmd.Flags().Float64Var(&flags.start, "start", 0, "Window start in seconds")
	cmd.Flags().Float64Var(&flags.end, "end", 0, "Window end in seconds")
	cmd.Flags().IntVar(&flags.width, "width", 0, "Canvas width in pixels (default from config)")
	cmd.Flags().IntVar(&flags.height, "height", 0, "Canvas height in pixels (default from config)")
	cmd.Flags().IntVar(&flags.webcamSize, "webcam-size", 0, "Percent of the canvas width used by the webcam (default from config)")
	cmd.Flags().StringVar(&flags.backdrop, "backdrop", "", "Image placed behind every other layer")
	cmd.Flags().StringVar(&flags.author, "author", "", "Author recorded in the project metadata")
	return cmd
}

func runBuild(cmd *cobra.Command, ctx *commandContext, flags buildFlags, dir, output string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runCtx := runctx.WithRunID(cmd.Context(), uuid.NewString())

	if check := preflight.CheckOutputDir(output); !check.Passed {
		return faults.Wrap(faults.ErrPersistence, "build", "preflight", check.Detail, nil)
	}

	rec, err := recording.Open(dir, logger)
	if err != nil {
		return err
	}
	prober, closeProber, err := ctx.prober(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProber()

	opts, err := buildOptions(cmd, cfg, flags)
	if err != nil {
		return err
	}
	result, err := presentation.NewAssembler(prober, logger).Assemble(runCtx, rec, opts)
	if err != nil {
		return err
	}

	project := xges.NewProject(result.Timeline, xges.Options{
		Title:  projectTitle(rec, logger),
		Author: strings.TrimSpace(flags.author),
		Logger: logger,
	})
	if err := project.Commit(); err != nil {
		return err
	}
	if err := project.Save(output); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %s\n", output)
	fmt.Fprintln(out, buildSummary(result, project.Duration()))
	return nil
}

// buildOptions merges command-line overrides onto the configured canvas.
func buildOptions(cmd *cobra.Command, cfg *config.Config, flags buildFlags) (presentation.Options, error) {
	opts := presentation.Options{
		Width:         cfg.Canvas.Width,
		Height:        cfg.Canvas.Height,
		WebcamPercent: cfg.Canvas.WebcamPercent,
		Backdrop:      cfg.Canvas.Backdrop,
	}
	if cmd.Flags().Changed("width") {
		opts.Width = flags.width
	}
	if cmd.Flags().Changed("height") {
		opts.Height = flags.height
	}
	if cmd.Flags().Changed("webcam-size") {
		opts.WebcamPercent = flags.webcamSize
	}
	if backdrop := strings.TrimSpace(flags.backdrop); backdrop != "" {
		expanded, err := config.ExpandPath(backdrop)
		if err != nil {
			return presentation.Options{}, fmt.Errorf("resolve backdrop path: %w", err)
		}
		opts.Backdrop = expanded
	}
	if flags.hasStart {
		start := flags.start
		opts.Start = &start
	}
	if flags.hasEnd {
		end := flags.end
		opts.End = &end
	}
	return opts, nil
}

// projectTitle prefers the meeting name and falls back to the directory name.
func projectTitle(rec *recording.Recording, logger *slog.Logger) string {
	meeting, err := rec.Meeting()
	if err == nil && strings.TrimSpace(meeting.Name) != "" {
		return strings.TrimSpace(meeting.Name)
	}
	if err != nil {
		logger.Debug("meeting name unavailable", logging.Error(err))
	}
	return titleFromDir(rec.Dir())
}

func titleFromDir(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

func buildSummary(result *presentation.Result, duration time.Duration) string {
	rows := make([][]string, 0, 4)
	clips := 0
	for _, layer := range result.Timeline.Layers() {
		var end time.Duration
		for _, clip := range layer.Clips {
			if clip.End() > end {
				end = clip.End()
			}
		}
		clips += len(layer.Clips)
		rows = append(rows, []string{
			layer.Name,
			strconv.Itoa(layer.Priority),
			strconv.Itoa(len(layer.Clips)),
			strconv.Itoa(result.Skipped[layer.Name]),
			formatDuration(end),
		})
	}
	summary := tableSpec{
		headers: []string{"Layer", "Priority", "Clips", "Skipped", "Ends"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
		footer:  []string{"Total", "", strconv.Itoa(clips), "", formatDuration(duration)},
	}
	var b strings.Builder
	b.WriteString(summary.render())
	fmt.Fprintf(&b, "\nCanvas %s, %d assets, %d probes", result.Layout, len(result.Timeline.Assets()), result.Probes)
	return b.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, d/time.Millisecond)
}
