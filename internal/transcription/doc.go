// Package transcription turns the normalized narration into an SRT subtitle
// artifact by running WhisperX as an external process.
package transcription
