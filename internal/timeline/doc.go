// Package timeline holds the data model of an assembled presentation project
// and the window trimmer every track builder routes its clips through.
//
// Key types:
//   - Asset: a probed media file, identified by absolute path
//   - Window: the global [start, end) viewing range
//   - Layer: a named bucket of placed clips with an explicit priority
//   - Timeline: all layers plus the video/audio restriction caps
//
// All timestamps are time.Duration values (nanoseconds, the native clock unit
// of the rendering engine). A Timeline is built by a single goroutine and is
// not safe for concurrent mutation.
package timeline
