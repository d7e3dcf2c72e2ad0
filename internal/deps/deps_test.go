package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestCheckFFprobeConfiguredPath(t *testing.T) {
	tmp := t.TempDir()
	ffprobePath := filepath.Join(tmp, executableName("ffprobe"))
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(ffprobePath, script, 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}

	status := CheckFFprobe(ffprobePath)
	if !status.Available {
		t.Fatalf("expected configured ffprobe to be available, got detail %q", status.Detail)
	}
	if status.Command != ffprobePath {
		t.Fatalf("expected ffprobe command %q, got %q", ffprobePath, status.Command)
	}
}

func TestCheckFFprobeNextToFFmpeg(t *testing.T) {
	tmp := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")

	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	ffmpegPath := filepath.Join(binDir, executableName("ffmpeg"))
	if err := os.WriteFile(ffmpegPath, script, 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	// Not executable, so LookPath("ffprobe") fails but the sibling probe
	// still inspects it.
	ffprobePath := filepath.Join(binDir, executableName("ffprobe"))
	if err := os.WriteFile(ffprobePath, script, 0o644); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	status := CheckFFprobe("")
	if status.Available {
		t.Fatalf("expected non-executable sibling to be rejected, got %#v", status)
	}

	if err := os.Chmod(ffprobePath, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	status = CheckFFprobe("ffprobe")
	if !status.Available {
		t.Fatalf("expected ffprobe to be available, got detail %q", status.Detail)
	}
	if status.Command != ffprobePath {
		t.Fatalf("expected ffprobe command %q, got %q", ffprobePath, status.Command)
	}
}

func TestCheckFFprobeNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	status := CheckFFprobe("")
	if status.Available {
		t.Fatal("expected ffprobe resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when ffprobe is unavailable")
	}
	if status.Command != "ffprobe" {
		t.Fatalf("expected default command, got %q", status.Command)
	}
}

func TestRequirementsListFFprobeFirst(t *testing.T) {
	reqs := Requirements("/opt/ffmpeg/bin/ffprobe")
	if len(reqs) == 0 || reqs[0].Command != "/opt/ffmpeg/bin/ffprobe" || reqs[0].Optional {
		t.Fatalf("expected required ffprobe first, got %#v", reqs)
	}
	for _, req := range reqs[1:] {
		if !req.Optional {
			t.Fatalf("expected %s to be optional", req.Name)
		}
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
