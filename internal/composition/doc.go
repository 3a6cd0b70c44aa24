// Package composition assembles the final video in two ffmpeg passes.
//
// Phase A concatenates the stock clips after normalizing each to 1280x720,
// square pixels, 30 fps and 44.1 kHz stereo audio; clips without an audio
// stream are paired with generated silence of the same length. Phase B lays
// the narration (optionally mixed with background music) under the
// concatenated video, burns in subtitles and overlays the thumbnail for the
// first five seconds. Output length is bounded by the shorter of video and
// narration.
//
// Argument construction is pure and tested separately from execution, which
// goes through an injectable ffmpeg runner.
package composition
