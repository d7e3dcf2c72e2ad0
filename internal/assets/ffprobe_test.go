package assets_test

import (
	"testing"
	"time"

	"lectern/internal/assets"
	"lectern/internal/media/ffprobe"
	"lectern/internal/timeline"
)

func TestInfoFromResultVideo(t *testing.T) {
	result, err := ffprobe.Parse([]byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "vp8", "width": 640, "height": 480, "r_frame_rate": "15/1"},
			{"codec_type": "audio", "codec_name": "opus", "sample_rate": "48000", "channels": 1}
		],
		"format": {"filename": "webcams.webm", "format_name": "matroska,webm", "duration": "3600.040000"}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info, err := assets.InfoFromResult(result)
	if err != nil {
		t.Fatalf("InfoFromResult: %v", err)
	}
	want := timeline.Info{
		Width:      640,
		Height:     480,
		Duration:   3600*time.Second + 40*time.Millisecond,
		FrameRate:  timeline.Rational{Num: 15, Den: 1},
		SampleRate: 48000,
		Channels:   1,
		HasVideo:   true,
		HasAudio:   true,
	}
	if info != want {
		t.Fatalf("got %+v, want %+v", info, want)
	}
}

func TestInfoFromResultImage(t *testing.T) {
	result, err := ffprobe.Parse([]byte(`{
		"streams": [{"codec_type": "video", "codec_name": "png", "width": 1600, "height": 1200, "r_frame_rate": "25/1"}],
		"format": {"filename": "slide-1.png", "format_name": "png_pipe"}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info, err := assets.InfoFromResult(result)
	if err != nil {
		t.Fatalf("InfoFromResult: %v", err)
	}
	if !info.IsImage || info.Duration != 0 || info.Width != 1600 {
		t.Fatalf("unexpected image info %+v", info)
	}
}

func TestInfoFromResultRejectsEmptyContainers(t *testing.T) {
	if _, err := assets.InfoFromResult(ffprobe.Result{}); err == nil {
		t.Fatal("expected error for result without streams")
	}
}
