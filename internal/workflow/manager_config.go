package workflow

import "time"

// Stage names as recorded on jobs and in logs.
const (
	StageMetadata      = "metadata"
	StageAcquisition   = "acquisition"
	StageNormalization = "normalize"
	StageTranscription = "transcribe"
	StageComposition   = "composition"
	StagePublish       = "publish"
)

// WithPollInterval overrides the configured pending-job poll interval.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// ConfigureStages registers the stage handlers in pipeline order. Nil
// handlers are skipped; a job only completes once every required output is
// present, so a partial set ends jobs as Failed.
func (m *Manager) ConfigureStages(set StageSet) {
	candidates := []pipelineStage{
		{name: StageMetadata, handler: set.Metadata},
		{name: StageAcquisition, handler: set.Acquisition},
		{name: StageNormalization, handler: set.Normalization},
		{name: StageTranscription, handler: set.Transcription},
		{name: StageComposition, handler: set.Composition},
		{name: StagePublish, handler: set.Publish},
	}
	stages := make([]pipelineStage, 0, len(candidates))
	for _, stg := range candidates {
		if stg.handler == nil {
			continue
		}
		if aware, ok := stg.handler.(loggerAware); ok {
			aware.SetLogger(m.logger)
		}
		stages = append(stages, stg)
	}

	m.mu.Lock()
	m.stages = stages
	m.mu.Unlock()
}
