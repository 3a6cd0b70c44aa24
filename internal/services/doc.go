// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Kind for turning a
//     failure into a stable classification string.
//
// The subpackages hold the collaborator clients (LLM, speech, stock media,
// WhisperX, thumbnail rendering, YouTube).
package services
