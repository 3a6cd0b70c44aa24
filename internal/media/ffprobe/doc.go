// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Prober: binary plus injectable runner, used by stages and tests
//
// Helper methods on Result provide stream counts, audio lookup and duration
// parsing. Probe failures carry services.ErrExternalTool.
package ffprobe
