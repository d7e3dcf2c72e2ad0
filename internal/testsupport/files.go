package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Slide describes one <image> element of a shapes.svg fixture.
type Slide struct {
	Href    string
	In, Out float64
}

// ShapesSVG renders a minimal shapes.svg document.
func ShapesSVG(slides ...Slide) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1">` + "\n")
	for i, s := range slides {
		fmt.Fprintf(&b, `  <image id="image%d" in="%g" out="%g" xlink:href="%s" width="1600" height="1200" x="0" y="0" style="visibility:hidden"/>`+"\n", i+1, s.In, s.Out, s.Href)
	}
	b.WriteString("</svg>\n")
	return b.String()
}

// DeskshareEvent describes one <event> of a deskshare.xml fixture.
type DeskshareEvent struct {
	Start, Stop float64
}

// DeskshareXML renders a minimal deskshare.xml document.
func DeskshareXML(events ...DeskshareEvent) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>` + "\n<recording>\n")
	for _, e := range events {
		fmt.Fprintf(&b, `  <event start_timestamp="%g" stop_timestamp="%g" video_width="1920" video_height="1080"/>`+"\n", e.Start, e.Stop)
	}
	b.WriteString("</recording>\n")
	return b.String()
}

// RecordingOptions controls WriteRecording.
type RecordingOptions struct {
	Slides    []Slide
	Deskshare []DeskshareEvent
	// NoDeskshare omits deskshare.xml and the deskshare video.
	NoDeskshare bool
	// WebcamExt selects the webcam container extension (default ".webm").
	WebcamExt string
}

// WriteRecording lays out a presentation directory the way the playback
// server publishes it and returns its path. Media files are placeholders;
// pair them with a FakeProber.
func WriteRecording(t testing.TB, opts RecordingOptions) string {
	t.Helper()

	dir := t.TempDir()
	ext := opts.WebcamExt
	if ext == "" {
		ext = ".webm"
	}
	WriteFile(t, filepath.Join(dir, "video", "webcams"+ext), 64)
	WriteText(t, filepath.Join(dir, "shapes.svg"), ShapesSVG(opts.Slides...))
	WriteText(t, filepath.Join(dir, "metadata.xml"), `<recording><id>abc</id><start_time>1700000000000</start_time><meeting id="abc" name="Lecture 1"/></recording>`)
	for _, s := range opts.Slides {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(s.Href)), 16)
	}
	if !opts.NoDeskshare {
		WriteText(t, filepath.Join(dir, "deskshare.xml"), DeskshareXML(opts.Deskshare...))
		WriteFile(t, filepath.Join(dir, "deskshare", "deskshare.webm"), 64)
	}
	return dir
}
