// Package xges serializes an assembled timeline as a GStreamer Editing
// Services project (.xges) that editors such as Pitivi can open.
//
// Project implements timeline.Persister: Commit validates the timeline and
// assigns clip identifiers, Save writes the document atomically next to the
// destination while holding an advisory lock on it.
package xges
