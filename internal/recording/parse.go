package recording

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"lectern/internal/faults"
	"lectern/internal/timeline"
)

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

type svgDocument struct {
	XMLName xml.Name   `xml:"svg"`
	Images  []svgImage `xml:"http://www.w3.org/2000/svg image"`
}

type svgImage struct {
	ID   string `xml:"id,attr"`
	Href string `xml:"http://www.w3.org/1999/xlink href,attr"`
	In   string `xml:"in,attr"`
	Out  string `xml:"out,attr"`
}

type deskshareDocument struct {
	XMLName xml.Name         `xml:"recording"`
	Events  []deskshareEvent `xml:"event"`
}

type deskshareEvent struct {
	Start string `xml:"start_timestamp,attr"`
	Stop  string `xml:"stop_timestamp,attr"`
}

type metadataDocument struct {
	XMLName   xml.Name `xml:"recording"`
	ID        string   `xml:"id"`
	StartTime string   `xml:"start_time"`
	Meeting   struct {
		ID   string `xml:"id,attr"`
		Name string `xml:"name,attr"`
	} `xml:"meeting"`
}

// ParseSlides reads the top-level SVG <image> elements of a shapes.svg
// document in document order. Images outside the SVG namespace are not
// slides. Hrefs are returned unresolved.
func ParseSlides(r io.Reader) ([]SlideEvent, error) {
	var doc svgDocument
	if err := decode(r, &doc); err != nil {
		return nil, malformed(ShapesFile, "decode", err)
	}
	events := make([]SlideEvent, 0, len(doc.Images))
	for i, img := range doc.Images {
		where := fmt.Sprintf("image #%d", i+1)
		if img.ID != "" {
			where = fmt.Sprintf("image %q", img.ID)
		}
		href := strings.TrimSpace(img.Href)
		if href == "" {
			return nil, malformed(ShapesFile, where, errors.New("missing xlink:href"))
		}
		if err := checkRelative(href); err != nil {
			return nil, malformed(ShapesFile, where, err)
		}
		in, err := parseSeconds("in", img.In)
		if err != nil {
			return nil, malformed(ShapesFile, where, err)
		}
		out, err := parseSeconds("out", img.Out)
		if err != nil {
			return nil, malformed(ShapesFile, where, err)
		}
		if out < in {
			return nil, malformed(ShapesFile, where, fmt.Errorf("out %s before in %s", out, in))
		}
		events = append(events, SlideEvent{Href: href, In: in, Out: out})
	}
	return events, nil
}

// ImageRefs returns every distinct image href anywhere in a shapes.svg
// document, in first-seen order. Unlike ParseSlides it also descends into
// nested groups, which is where annotation images live.
func ImageRefs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	seen := make(map[string]struct{})
	var refs []string
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(ShapesFile, "scan", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "image" {
			continue
		}
		if start.Name.Space != svgNamespace {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local != "href" || attr.Name.Space != xlinkNamespace {
				continue
			}
			href := strings.TrimSpace(attr.Value)
			if href == "" {
				continue
			}
			if err := checkRelative(href); err != nil {
				return nil, malformed(ShapesFile, "image", err)
			}
			if _, dup := seen[href]; dup {
				continue
			}
			seen[href] = struct{}{}
			refs = append(refs, href)
		}
	}
	return refs, nil
}

// ParseDeskshare reads the <event> elements of a deskshare.xml document.
func ParseDeskshare(r io.Reader) ([]DeskshareEvent, error) {
	var doc deskshareDocument
	if err := decode(r, &doc); err != nil {
		return nil, malformed(DeskshareFile, "decode", err)
	}
	events := make([]DeskshareEvent, 0, len(doc.Events))
	for i, ev := range doc.Events {
		where := fmt.Sprintf("event #%d", i+1)
		start, err := parseSeconds("start_timestamp", ev.Start)
		if err != nil {
			return nil, malformed(DeskshareFile, where, err)
		}
		stop, err := parseSeconds("stop_timestamp", ev.Stop)
		if err != nil {
			return nil, malformed(DeskshareFile, where, err)
		}
		if stop < start {
			return nil, malformed(DeskshareFile, where, fmt.Errorf("stop %s before start %s", stop, start))
		}
		events = append(events, DeskshareEvent{Start: start, Stop: stop})
	}
	return events, nil
}

// ParseMetadata reads metadata.xml. Missing optional fields are left zero.
func ParseMetadata(r io.Reader) (Meeting, error) {
	var doc metadataDocument
	if err := decode(r, &doc); err != nil {
		return Meeting{}, malformed(MetadataFile, "decode", err)
	}
	meeting := Meeting{
		ID:   strings.TrimSpace(doc.Meeting.ID),
		Name: strings.TrimSpace(doc.Meeting.Name),
	}
	if meeting.ID == "" {
		meeting.ID = strings.TrimSpace(doc.ID)
	}
	if raw := strings.TrimSpace(doc.StartTime); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Meeting{}, malformed(MetadataFile, "start_time", err)
		}
		meeting.StartTime = time.UnixMilli(ms)
	}
	return meeting, nil
}

func decode(r io.Reader, v any) error {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true
	return decoder.Decode(v)
}

func parseSeconds(name, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s %q is not a number", name, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s %q is negative", name, raw)
	}
	return timeline.Seconds(value), nil
}

func checkRelative(href string) error {
	if strings.Contains(href, "://") || strings.HasPrefix(href, "/") {
		return fmt.Errorf("href %q is not relative", href)
	}
	cleaned := path.Clean(href)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("href %q escapes the presentation directory", href)
	}
	return nil
}

func malformed(file, where string, err error) error {
	return faults.Wrap(faults.ErrMalformedMetadata, "recording", file, where, err)
}
