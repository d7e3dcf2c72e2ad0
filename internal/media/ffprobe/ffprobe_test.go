package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Width: 1280, Height: 720, RFrameRate: "30000/1001"},
			{CodecType: "audio", SampleRate: "48000", Channels: 2},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
		},
	}
	if result.countStreams("video") != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.countStreams("video"))
	}
	if result.countStreams("audio") != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.countStreams("audio"))
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	video, ok := result.FirstStream("video")
	if !ok {
		t.Fatal("expected a video stream")
	}
	num, den, ok := video.FrameRate()
	if !ok || num != 30000 || den != 1001 {
		t.Fatalf("unexpected frame rate %d/%d ok=%v", num, den, ok)
	}
	audio, _ := result.FirstStream("audio")
	if audio.SampleRateHz() != 48000 {
		t.Fatalf("unexpected sample rate %d", audio.SampleRateHz())
	}
	if result.IsStillImage() {
		t.Fatal("expected video with audio not to be a still image")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{Duration: "bad"},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Duration: "10.5"}, {CodecType: "audio", Duration: "11.25"}},
	}
	if got := result.DurationSeconds(); got != 11.25 {
		t.Fatalf("expected longest stream duration, got %v", got)
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		in       string
		num, den int
		ok       bool
	}{
		{"25/1", 25, 1, true},
		{"30", 30, 1, true},
		{"0/0", 0, 0, false},
		{"", 0, 0, false},
		{"abc/1", 0, 0, false},
	}
	for _, tc := range cases {
		num, den, ok := ParseRate(tc.in)
		if num != tc.num || den != tc.den || ok != tc.ok {
			t.Fatalf("ParseRate(%q) = %d/%d %v, want %d/%d %v", tc.in, num, den, ok, tc.num, tc.den, tc.ok)
		}
	}
}

func TestFrameRateFallsBackToAverage(t *testing.T) {
	s := Stream{RFrameRate: "0/0", AvgFrameRate: "24/1"}
	num, den, ok := s.FrameRate()
	if !ok || num != 24 || den != 1 {
		t.Fatalf("unexpected frame rate %d/%d ok=%v", num, den, ok)
	}
}

func TestIsStillImage(t *testing.T) {
	png := Result{
		Streams: []Stream{{CodecType: "video", CodecName: "png", Width: 1600, Height: 1200}},
		Format:  Format{FormatName: "png_pipe"},
	}
	if !png.IsStillImage() {
		t.Fatal("expected png_pipe to be detected as still image")
	}
	jpeg := Result{
		Streams: []Stream{{CodecType: "video", CodecName: "mjpeg", NbFrames: "1"}},
		Format:  Format{FormatName: "jpeg"},
	}
	if !jpeg.IsStillImage() {
		t.Fatal("expected single-frame mjpeg to be a still image")
	}
	webm := Result{
		Streams: []Stream{{CodecType: "video", CodecName: "vp8"}},
		Format:  Format{FormatName: "matroska,webm"},
	}
	if webm.IsStillImage() {
		t.Fatal("expected webm video not to be a still image")
	}
}

func TestParseDecodesStreams(t *testing.T) {
	payload := []byte(`{"streams":[{"codec_type":"video","width":320,"height":240}],"format":{"filename":"/rec/a.webm","duration":"1.0"}}`)
	result, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	video, ok := result.FirstStream("video")
	if !ok || video.Width != 320 || video.Height != 240 {
		t.Fatalf("unexpected video stream %+v", video)
	}
	if result.Format.Filename != "/rec/a.webm" || result.DurationSeconds() != 1 {
		t.Fatalf("unexpected format %+v", result.Format)
	}
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
