package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lectern/internal/fetch"
	"lectern/internal/staging"
)

const defaultCleanAge = 24 * time.Hour

func newMaterialsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List fetched recordings in the materials directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := staging.ListDirectories(cfg.Paths.MaterialsDir)
			if err != nil {
				return fmt.Errorf("list materials: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintf(out, "No recordings in %s\n", cfg.Paths.MaterialsDir)
				return nil
			}
			rows := make([][]string, 0, len(dirs))
			for _, d := range dirs {
				rows = append(rows, []string{
					d.Name,
					yesNo(d.Recording),
					humanize.Bytes(uint64(d.Size)),
					humanize.Time(d.ModTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "Recording", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove temporary directories left behind by interrupted fetches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			root := ctx.tempRoot()
			result := staging.CleanStale(cmd.Context(), root, staging.CleanOptions{
				Prefix: fetch.TempDirPrefix,
				MaxAge: maxAge,
				DryRun: dryRun,
			}, logger)

			out := cmd.OutOrStdout()
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, path := range result.Removed {
				fmt.Fprintf(out, "%s %s\n", verb, path)
			}
			if len(result.Removed) == 0 {
				fmt.Fprintf(out, "No stale fetch directories older than %s in %s\n", maxAge, root)
			}
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return fmt.Errorf("clean %s: %w (%d error(s))", first.Path, first.Error, len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", defaultCleanAge, "Only remove directories older than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List directories without removing them")
	return cmd
}

// tempRoot is where fetch creates its temporary directories.
func (c *commandContext) tempRoot() string {
	if c.tempDir != "" {
		return c.tempDir
	}
	return os.TempDir()
}
