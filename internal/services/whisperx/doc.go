// Package whisperx wraps the external tools used to turn narration into
// subtitles.
//
// NormalizeAudio converts any narration file to the mono 16 kHz PCM WAV
// WhisperX expects. Service.Transcribe runs WhisperX through uvx and returns
// the path of the SRT file it wrote. Both accept an injected command runner
// so tests never spawn processes.
package whisperx
