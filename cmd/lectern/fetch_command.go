package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lectern/internal/config"
	"lectern/internal/fetch"
	"lectern/internal/logging"
	"lectern/internal/runctx"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch PRESENTATION-URL [OUTPUT-DIR]",
		Short: "Download a recording from its playback URL",
		Long: "Download a recording from its playback URL.\n\n" +
			"Without OUTPUT-DIR the files land in a temporary directory that is moved to\n" +
			"<materials_dir>/<start time>-<meeting slug> once every required file arrived.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := fetch.Options{
				MaterialsDir: cfg.Paths.MaterialsDir,
				UserAgent:    cfg.Fetch.UserAgent,
				Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
				MaxResumes:   cfg.Fetch.MaxResumes,
				Logger:       logger,
			}
			if len(args) > 1 {
				outDir, err := config.ExpandPath(strings.TrimSpace(args[1]))
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				opts.OutputDir = outDir
			}

			downloader, err := fetch.NewDownloader(args[0], opts)
			if err != nil {
				return err
			}
			runCtx := runctx.WithRunID(cmd.Context(), uuid.NewString())
			logging.WithContext(runCtx, logger).Info("fetch started",
				logging.String(logging.FieldEventType, "fetch_started"),
				logging.String("playback", downloader.Playback().String()))

			result, err := downloader.Download(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Component", "Status", "Bytes"},
				componentRows(result.Components),
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Everything was downloaded here:")
			fmt.Fprintf(out, "  %s\n", result.Dir)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next, create the project file:")
			fmt.Fprintf(out, "  lectern build %s %s.xges\n", result.Dir, result.Dir)
			return nil
		},
	}
}

func componentRows(components []fetch.ComponentResult) [][]string {
	rows := make([][]string, 0, len(components))
	for _, c := range components {
		status := "fetched"
		bytes := humanize.Bytes(uint64(c.Bytes))
		if !c.Fetched() {
			status = "skipped: " + skipReason(c.Err)
			bytes = ""
		}
		rows = append(rows, []string{c.Path, status, bytes})
	}
	return rows
}

func skipReason(err error) string {
	var status *fetch.StatusError
	if errors.As(err, &status) {
		if status.NotFound() {
			return "not in recording"
		}
		return fmt.Sprintf("HTTP %d", status.Code)
	}
	return err.Error()
}
