// Package audioprep converts the raw narration into the mono 16 kHz WAV that
// the transcriber expects and stores the result as a new artifact.
package audioprep
