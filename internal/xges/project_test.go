package xges_test

import (
	"bytes"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"lectern/internal/faults"
	"lectern/internal/testsupport"
	"lectern/internal/timeline"
	"lectern/internal/xges"
)

type savedProject struct {
	Version string `xml:"version,attr"`
	Project struct {
		Metadatas string `xml:"metadatas,attr"`
		Assets    []struct {
			ID         string `xml:"id,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"ressources>asset"`
		Timeline struct {
			Metadatas string `xml:"metadatas,attr"`
			Tracks    []struct {
				TrackType  int    `xml:"track-type,attr"`
				Properties string `xml:"properties,attr"`
			} `xml:"track"`
			Layers []struct {
				Priority  int    `xml:"priority,attr"`
				Metadatas string `xml:"metadatas,attr"`
				Clips     []struct {
					ID         int    `xml:"id,attr"`
					AssetID    string `xml:"asset-id,attr"`
					TrackTypes int    `xml:"track-types,attr"`
					Start      int64  `xml:"start,attr"`
					Duration   int64  `xml:"duration,attr"`
					InPoint    int64  `xml:"inpoint,attr"`
					Sources    []struct {
						TrackID            int    `xml:"track-id,attr"`
						ChildrenProperties string `xml:"children-properties,attr"`
					} `xml:"source"`
				} `xml:"clip"`
			} `xml:"layer"`
		} `xml:"timeline"`
	} `xml:"project"`
}

func sampleTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl := timeline.New()
	tl.Video = timeline.VideoCaps{Width: 1920, Height: 1080, FrameRate: timeline.Rational{Num: 30, Den: 1}}
	tl.Audio = timeline.AudioCaps{Rate: 48000, Channels: 1}

	webcam := &timeline.Asset{Path: "/rec/video/webcams.webm", Info: testsupport.Webcam(time.Hour)}
	slide := &timeline.Asset{Path: "/rec/presentation/d1/slide 1.png", Info: testsupport.Still(1600, 1200)}
	tl.RegisterAsset(webcam)
	tl.RegisterAsset(slide)

	// Added out of priority order on purpose.
	slides, err := tl.AddLayer("Slides", timeline.PrioritySlides)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	camera, err := tl.AddLayer("Camera", timeline.PriorityCamera)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	open := timeline.Window{}
	camera.Place(open, webcam, 0, 0, time.Hour, timeline.Rect{X: 1440, Y: 720, Width: 480, Height: 360})
	slides.Place(open, slide, 10*time.Second, 0, 20*time.Second, timeline.Rect{Width: 1440, Height: 1080})
	return tl
}

func TestSaveWritesProject(t *testing.T) {
	project := xges.NewProject(sampleTimeline(t), xges.Options{Title: "Lecture 1"})
	if err := project.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	out := filepath.Join(t.TempDir(), "nested", "lecture.xges")
	if err := project.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if project.ClipCount() != 2 || project.Duration() != time.Hour {
		t.Fatalf("unexpected commit stats clips=%d duration=%s", project.ClipCount(), project.Duration())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read project: %v", err)
	}
	var saved savedProject
	if err := xml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	if saved.Version != "0.4" {
		t.Fatalf("unexpected version %q", saved.Version)
	}
	if !strings.Contains(saved.Project.Metadatas, `name=(string)"Lecture 1"`) {
		t.Fatalf("expected title metadata, got %q", saved.Project.Metadatas)
	}
	if len(saved.Project.Assets) != 2 || saved.Project.Assets[1].ID != "file:///rec/presentation/d1/slide%201.png" {
		t.Fatalf("unexpected assets %+v", saved.Project.Assets)
	}

	tracks := saved.Project.Timeline.Tracks
	if len(tracks) != 2 || tracks[0].TrackType != 4 || tracks[1].TrackType != 2 {
		t.Fatalf("unexpected tracks %+v", tracks)
	}
	if !strings.Contains(tracks[0].Properties, `framerate\=\(fraction\)30/1`) {
		t.Fatalf("expected framerate restriction, got %q", tracks[0].Properties)
	}
	if !strings.Contains(tracks[1].Properties, `rate\=\(int\)48000`) {
		t.Fatalf("expected audio rate restriction, got %q", tracks[1].Properties)
	}

	layers := saved.Project.Timeline.Layers
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}
	if layers[0].Priority != 0 || !strings.Contains(layers[0].Metadatas, "video::name=(string)Camera") {
		t.Fatalf("unexpected first layer %+v", layers[0])
	}
	cam := layers[0].Clips[0]
	if cam.ID != 0 || cam.TrackTypes != 6 || cam.Duration != int64(time.Hour) || len(cam.Sources) != 2 {
		t.Fatalf("unexpected camera clip %+v", cam)
	}
	if !strings.Contains(cam.Sources[0].ChildrenProperties, "posx=(int)1440, posy=(int)720, width=(int)480, height=(int)360") {
		t.Fatalf("unexpected camera geometry %q", cam.Sources[0].ChildrenProperties)
	}
	slide := layers[1].Clips[0]
	if slide.ID != 1 || slide.TrackTypes != 4 || slide.Start != int64(10*time.Second) || slide.InPoint != 0 {
		t.Fatalf("unexpected slide clip %+v", slide)
	}

	if _, err := os.Stat(out + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file to be removed, got %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the project file, found %d entries", len(entries))
	}
}

func TestSaveBeforeCommitFails(t *testing.T) {
	project := xges.NewProject(sampleTimeline(t), xges.Options{})
	err := project.Save(filepath.Join(t.TempDir(), "out.xges"))
	if !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err := project.Encode(&bytes.Buffer{}); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error from Encode, got %v", err)
	}
}

func TestCommitRejectsInvalidTimelines(t *testing.T) {
	noCaps := timeline.New()
	if err := xges.NewProject(noCaps, xges.Options{}).Commit(); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error for missing caps, got %v", err)
	}

	tl := sampleTimeline(t)
	layer, _ := tl.Layer("Slides")
	layer.Clips = append(layer.Clips, timeline.PlacedClip{Duration: time.Second})
	if err := xges.NewProject(tl, xges.Options{}).Commit(); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error for nil asset, got %v", err)
	}

	if err := xges.NewProject(nil, xges.Options{}).Commit(); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error for nil timeline, got %v", err)
	}
}

func TestSaveFailsWhileLocked(t *testing.T) {
	project := xges.NewProject(sampleTimeline(t), xges.Options{})
	if err := project.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out.xges")
	lock := flock.New(out + ".lock")
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	if err := project.Save(out); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no project file, got %v", err)
	}
}

func TestSaveOntoDirectoryFails(t *testing.T) {
	project := xges.NewProject(sampleTimeline(t), xges.Options{})
	if err := project.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	target := filepath.Join(t.TempDir(), "out.xges")
	if err := os.MkdirAll(filepath.Join(target, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := project.Save(target); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
