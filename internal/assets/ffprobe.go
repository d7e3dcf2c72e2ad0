package assets

import (
	"context"
	"fmt"
	"math"

	"lectern/internal/media/ffprobe"
	"lectern/internal/timeline"
)

// FFprobe probes media with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Probe implements Prober.
func (p FFprobe) Probe(ctx context.Context, path string) (timeline.Info, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return timeline.Info{}, err
	}
	return InfoFromResult(result)
}

// InfoFromResult converts parsed ffprobe output into timeline metadata.
func InfoFromResult(result ffprobe.Result) (timeline.Info, error) {
	info := timeline.Info{IsImage: result.IsStillImage()}

	if video, ok := result.FirstStream("video"); ok {
		info.HasVideo = true
		info.Width = video.Width
		info.Height = video.Height
		if num, den, ok := video.FrameRate(); ok {
			info.FrameRate = timeline.Rational{Num: num, Den: den}
		}
	}
	if audio, ok := result.FirstStream("audio"); ok {
		info.HasAudio = true
		info.SampleRate = audio.SampleRateHz()
		info.Channels = audio.Channels
	}
	if !info.HasVideo && !info.HasAudio {
		return timeline.Info{}, fmt.Errorf("no audio or video streams in %s", result.Format.Filename)
	}
	if !info.IsImage {
		seconds := result.DurationSeconds()
		if math.IsNaN(seconds) || seconds < 0 {
			return timeline.Info{}, fmt.Errorf("unreadable duration %q", result.Format.Duration)
		}
		info.Duration = timeline.Seconds(seconds)
	}
	return info, nil
}
