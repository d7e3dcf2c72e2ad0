// Package recording reads a published presentation directory: it locates the
// webcam and desktop-share media and turns the XML metadata documents
// (shapes.svg, deskshare.xml, metadata.xml) into typed, validated event
// records.
//
// Nothing outside this package touches the raw documents. Parse failures are
// reported with faults.ErrMalformedMetadata naming the file and element; the
// assembly engine only ever sees validated event sequences.
package recording
