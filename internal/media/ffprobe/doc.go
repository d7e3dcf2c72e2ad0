// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no lectern-specific dependencies.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, format name)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide stream lookup, duration parsing, frame
// rate parsing, and still-image detection.
package ffprobe
