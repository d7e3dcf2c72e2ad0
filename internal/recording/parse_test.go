package recording_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"lectern/internal/faults"
	"lectern/internal/recording"
	"lectern/internal/testsupport"
)

func TestParseSlides(t *testing.T) {
	doc := testsupport.ShapesSVG(
		testsupport.Slide{Href: "presentation/d1/slide-1.png", In: 0, Out: 12.5},
		testsupport.Slide{Href: "presentation/deskshare.png", In: 12.5, Out: 30},
		testsupport.Slide{Href: "presentation/d1/slide-2.png", In: 30, Out: 1800},
	)
	events, err := recording.ParseSlides(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseSlides: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].In != 0 || events[0].Out != 12500*time.Millisecond {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if !events[1].IsDeskshare() || events[0].IsDeskshare() {
		t.Fatal("expected only the second slide to be the deskshare placeholder")
	}
	if events[2].Duration() != 1770*time.Second {
		t.Fatalf("unexpected duration %s", events[2].Duration())
	}
}

func TestParseSlidesIgnoresNestedImages(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
  <image in="0" out="10" xlink:href="presentation/d1/slide-1.png"/>
  <g class="canvas"><image in="1" out="2" xlink:href="presentation/d1/annotation.png"/></g>
</svg>`
	events, err := recording.ParseSlides(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseSlides: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only top-level images, got %d", len(events))
	}
}

func TestParseSlidesRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"broken xml":    `<svg><image`,
		"missing in":    svgDoc(`<image out="1" xlink:href="a/b.png"/>`),
		"bad number":    svgDoc(`<image in="x" out="1" xlink:href="a/b.png"/>`),
		"out before in": svgDoc(`<image in="5" out="1" xlink:href="a/b.png"/>`),
		"negative":      svgDoc(`<image in="-1" out="1" xlink:href="a/b.png"/>`),
		"missing href":  svgDoc(`<image in="0" out="1"/>`),
		"plain href":    svgDoc(`<image in="0" out="1" href="a/b.png"/>`),
		"escaping href": svgDoc(`<image in="0" out="1" xlink:href="../../etc/passwd"/>`),
		"absolute href": svgDoc(`<image in="0" out="1" xlink:href="/etc/passwd"/>`),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := recording.ParseSlides(strings.NewReader(doc))
			if !errors.Is(err, faults.ErrMalformedMetadata) {
				t.Fatalf("expected malformed metadata, got %v", err)
			}
			if !strings.Contains(err.Error(), recording.ShapesFile) {
				t.Fatalf("expected file name in %q", err.Error())
			}
		})
	}
}

func svgDoc(body string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">` + body + `</svg>`
}

func TestParseSlidesSkipsForeignNamespaceImages(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:x="urn:example:other">
  <image in="0" out="10" xlink:href="presentation/d1/slide-1.png"/>
  <x:image in="10" out="20" xlink:href="presentation/d1/other.png"/>
</svg>`
	events, err := recording.ParseSlides(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseSlides: %v", err)
	}
	if len(events) != 1 || events[0].Href != "presentation/d1/slide-1.png" {
		t.Fatalf("expected only the SVG image, got %+v", events)
	}
}

func TestImageRefsSkipsForeignNamespaceImages(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:x="urn:example:other">
  <image xlink:href="presentation/d1/slide-1.png"/>
  <x:image xlink:href="presentation/d1/other.png"/>
</svg>`
	refs, err := recording.ImageRefs(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImageRefs: %v", err)
	}
	if len(refs) != 1 || refs[0] != "presentation/d1/slide-1.png" {
		t.Fatalf("got %v", refs)
	}
}

func TestImageRefsDeduplicatesAndDescends(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
  <image in="0" out="10" xlink:href="presentation/d1/slide-1.png"/>
  <image in="10" out="20" xlink:href="presentation/d1/slide-2.png"/>
  <image in="20" out="30" xlink:href="presentation/d1/slide-1.png"/>
  <g><image xlink:href="presentation/d1/thumb.png"/></g>
</svg>`
	refs, err := recording.ImageRefs(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImageRefs: %v", err)
	}
	want := []string{"presentation/d1/slide-1.png", "presentation/d1/slide-2.png", "presentation/d1/thumb.png"}
	if strings.Join(refs, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", refs, want)
	}
}

func TestParseDeskshare(t *testing.T) {
	doc := testsupport.DeskshareXML(
		testsupport.DeskshareEvent{Start: 100, Stop: 200},
		testsupport.DeskshareEvent{Start: 250.5, Stop: 260},
	)
	events, err := recording.ParseDeskshare(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseDeskshare: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Start != 250500*time.Millisecond || events[1].Stop != 260*time.Second {
		t.Fatalf("unexpected event %+v", events[1])
	}
}

func TestParseDeskshareRejectsStopBeforeStart(t *testing.T) {
	doc := testsupport.DeskshareXML(testsupport.DeskshareEvent{Start: 20, Stop: 10})
	if _, err := recording.ParseDeskshare(strings.NewReader(doc)); !errors.Is(err, faults.ErrMalformedMetadata) {
		t.Fatalf("expected malformed metadata, got %v", err)
	}
}

func TestParseMetadata(t *testing.T) {
	doc := `<recording><id>abc-123</id><start_time>1700000000000</start_time><meeting id="abc-123" name="Intro to Go"/></recording>`
	meeting, err := recording.ParseMetadata(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if meeting.Name != "Intro to Go" || meeting.ID != "abc-123" {
		t.Fatalf("unexpected meeting %+v", meeting)
	}
	if !meeting.StartTime.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("unexpected start time %s", meeting.StartTime)
	}

	empty, err := recording.ParseMetadata(strings.NewReader(`<recording/>`))
	if err != nil {
		t.Fatalf("ParseMetadata empty: %v", err)
	}
	if !empty.StartTime.IsZero() || empty.Name != "" {
		t.Fatalf("expected zero meeting, got %+v", empty)
	}

	if _, err := recording.ParseMetadata(strings.NewReader(`<recording><start_time>soon</start_time></recording>`)); !errors.Is(err, faults.ErrMalformedMetadata) {
		t.Fatalf("expected malformed metadata, got %v", err)
	}
}
