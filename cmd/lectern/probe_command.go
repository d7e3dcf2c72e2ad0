package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"lectern/internal/assets"
	"lectern/internal/timeline"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE...",
		Short: "Show the media properties lectern sees for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			prober, closeProber, err := ctx.prober(cfg, logger)
			if err != nil {
				return err
			}
			defer closeProber()

			tl := timeline.New()
			resolver := assets.NewResolver(prober, tl, logger)
			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				asset, err := resolver.Resolve(cmd.Context(), arg)
				if err != nil {
					return err
				}
				rows = append(rows, probeRow(asset))
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Kind", "Resolution", "Frame rate", "Duration", "Audio"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func probeRow(asset *timeline.Asset) []string {
	info := asset.Info
	kind := "video"
	switch {
	case info.IsImage:
		kind = "image"
	case !info.HasVideo && info.HasAudio:
		kind = "audio"
	}

	resolution := "-"
	if info.Width > 0 && info.Height > 0 {
		resolution = fmt.Sprintf("%dx%d", info.Width, info.Height)
	}
	frameRate := "-"
	if info.FrameRate.Valid() && !info.IsImage {
		frameRate = fmt.Sprintf("%.3g fps", info.FrameRate.Float())
	}
	duration := "-"
	if !info.IsImage {
		duration = formatDuration(info.Duration)
	}
	audio := yesNo(info.HasAudio)
	if info.HasAudio {
		audio = fmt.Sprintf("%d Hz, %d ch", info.SampleRate, info.Channels)
	}
	return []string{filepath.Base(asset.Path), kind, resolution, frameRate, duration, audio}
}
