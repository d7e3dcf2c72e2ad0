package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"lectern/internal/faults"
)

var playbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^.*/playback/presentation/2\.0/playback\.html\?meetingId=(\S+)$`),
	regexp.MustCompile(`^.*/playback/presentation/2\.3/(\S+)$`),
}

// Playback identifies a published recording.
type Playback struct {
	MeetingID string
	// Base is the directory URL every recording file is fetched relative to.
	Base *url.URL
}

// ParsePlaybackURL extracts the meeting id from a 2.0 or 2.3 playback URL
// and derives the presentation base URL on the same host.
func ParsePlaybackURL(raw string) (Playback, error) {
	raw = strings.TrimSpace(raw)
	var id string
	for _, pattern := range playbackPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			id = strings.Trim(m[1], "/")
			break
		}
	}
	if id == "" {
		return Playback{}, faults.Wrap(faults.ErrConfiguration, "fetch", "parse url",
			fmt.Sprintf("does not look like a playback URL: %s", raw), nil)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Playback{}, faults.Wrap(faults.ErrConfiguration, "fetch", "parse url", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Playback{}, faults.Wrap(faults.ErrConfiguration, "fetch", "parse url",
			fmt.Sprintf("unsupported scheme %q", u.Scheme), nil)
	}
	base := u.ResolveReference(&url.URL{Path: "/presentation/" + id + "/"})
	return Playback{MeetingID: id, Base: base}, nil
}

func (p Playback) String() string {
	if p.Base == nil {
		return p.MeetingID
	}
	return p.Base.String()
}
