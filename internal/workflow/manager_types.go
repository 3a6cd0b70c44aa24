package workflow

import (
	"log/slog"

	"promptreel/internal/stage"
)

// StageSet bundles the concrete handlers the manager orchestrates, in
// pipeline order.
type StageSet struct {
	Metadata      stage.Handler
	Acquisition   stage.Handler
	Normalization stage.Handler
	Transcription stage.Handler
	Composition   stage.Handler
	Publish       stage.Handler
}

type pipelineStage struct {
	name    string
	handler stage.Handler
}

type loggerAware interface {
	SetLogger(*slog.Logger)
}
