package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Requirements lists the external tools lectern uses. ffprobe is mandatory
// for building; the GES tools only matter for rendering a saved project.
func Requirements(ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Probes media dimensions, durations, and rates"},
		{Name: "ges-launch", Command: "ges-launch-1.0", Description: "Renders saved .xges projects", Optional: true},
		{Name: "Pitivi", Command: "pitivi", Description: "Edits saved .xges projects", Optional: true},
	}
}

// CheckFFprobe reports the ffprobe binary a build will execute.
//
// A configured command is resolved first. When it is the bare default and not
// on PATH, an ffprobe sitting next to an ffmpeg on PATH is accepted, since
// static FFmpeg bundles ship both binaries in one directory.
func CheckFFprobe(configured string) Status {
	command := strings.TrimSpace(configured)
	if command == "" {
		command = "ffprobe"
	}
	result := Status{
		Name:        "FFprobe",
		Command:     command,
		Description: "Probes media dimensions, durations, and rates",
	}

	if resolved, err := exec.LookPath(command); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	if command == "ffprobe" {
		if ffmpegPath, err := exec.LookPath("ffmpeg"); err == nil {
			candidate := siblingBinary(ffmpegPath, "ffprobe")
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Available = true
				return result
			}
		}
	}

	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", command)
	return result
}

func siblingBinary(path, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(path), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
