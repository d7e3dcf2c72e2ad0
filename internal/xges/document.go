package xges

import "encoding/xml"

const formatVersion = "0.4"

// GES track types.
const (
	trackTypeAudio = 2
	trackTypeVideo = 4
)

type document struct {
	XMLName xml.Name       `xml:"ges"`
	Version string         `xml:"version,attr"`
	Project projectElement `xml:"project"`
}

type projectElement struct {
	Properties string           `xml:"properties,attr"`
	Metadatas  string           `xml:"metadatas,attr"`
	Encoding   encodingProfiles `xml:"encoding-profiles"`
	Resources  resources        `xml:"ressources"`
	Timeline   timelineElement  `xml:"timeline"`
}

type encodingProfiles struct{}

type resources struct {
	Assets []assetElement `xml:"asset"`
}

type assetElement struct {
	ID              string `xml:"id,attr"`
	ExtractableType string `xml:"extractable-type-name,attr"`
	Properties      string `xml:"properties,attr"`
	Metadatas       string `xml:"metadatas,attr"`
}

type timelineElement struct {
	Properties string         `xml:"properties,attr"`
	Metadatas  string         `xml:"metadatas,attr"`
	Tracks     []trackElement `xml:"track"`
	Layers     []layerElement `xml:"layer"`
}

type trackElement struct {
	Caps       string `xml:"caps,attr"`
	TrackType  int    `xml:"track-type,attr"`
	TrackID    int    `xml:"track-id,attr"`
	Properties string `xml:"properties,attr"`
	Metadatas  string `xml:"metadatas,attr"`
}

type layerElement struct {
	Priority   int           `xml:"priority,attr"`
	Properties string        `xml:"properties,attr"`
	Metadatas  string        `xml:"metadatas,attr"`
	Clips      []clipElement `xml:"clip"`
}

type clipElement struct {
	ID            int             `xml:"id,attr"`
	AssetID       string          `xml:"asset-id,attr"`
	TypeName      string          `xml:"type-name,attr"`
	LayerPriority int             `xml:"layer-priority,attr"`
	TrackTypes    int             `xml:"track-types,attr"`
	Start         int64           `xml:"start,attr"`
	Duration      int64           `xml:"duration,attr"`
	InPoint       int64           `xml:"inpoint,attr"`
	Rate          int             `xml:"rate,attr"`
	Properties    string          `xml:"properties,attr"`
	Metadatas     string          `xml:"metadatas,attr"`
	Sources       []sourceElement `xml:"source"`
}

type sourceElement struct {
	TrackID            int    `xml:"track-id,attr"`
	ChildrenProperties string `xml:"children-properties,attr"`
}
