package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/internal/assets"
	"lectern/internal/config"
	"lectern/internal/testsupport"
)

// runCLI executes the command tree against configPath with the real prober.
func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWith(t, newCommandContext(), args, configPath)
}

// runCLIWithProber executes the command tree with prober standing in for ffprobe.
func runCLIWithProber(t *testing.T, prober assets.Prober, args []string, configPath string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.baseProber = func(*config.Config) assets.Prober { return prober }
	return runCLIWith(t, ctx, args, configPath)
}

func runCLIWith(t *testing.T, ctx *commandContext, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithContext(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig persists cfg next to its temp directories and returns the path.
func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
