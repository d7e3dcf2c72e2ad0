// Package fetch downloads a published recording from its playback URL into a
// local presentation directory that the build command can consume.
//
// Client performs single-file GETs that resume with HTTP range requests when
// the server closes the connection early. Downloader drives a full fetch:
// metadata.xml, shapes.svg, and every slide image are required; the remaining
// components are optional and reported per file in ComponentResult. An optional
// component that cannot be fetched is logged with its reason and skipped.
//
// Without an explicit output directory the download lands in a temporary
// directory and is moved to <materials>/<start-time>-<slug> once complete, so
// the materials tree never holds a half-finished recording.
package fetch
