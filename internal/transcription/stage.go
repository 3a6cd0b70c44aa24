package transcription

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/stage"
)

// StageName identifies the transcription stage.
const StageName = "transcribe"

// Transcriber writes an SRT for source into outputDir and returns its path.
type Transcriber interface {
	Transcribe(ctx context.Context, source, outputDir string) (string, error)
}

// Stage produces subtitles from the normalized narration.
type Stage struct {
	transcriber Transcriber
	store       blobstore.Store
	policy      retry.Policy
	workDir     string
	logger      *slog.Logger
}

// NewStage constructs the transcription stage.
func NewStage(transcriber Transcriber, store blobstore.Store, policy retry.Policy, workDir string, logger *slog.Logger) *Stage {
	s := &Stage{transcriber: transcriber, store: store, policy: policy, workDir: workDir}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the stage logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
	s.policy = s.policy.WithLogger(s.logger)
}

// Prepare requires the normalized narration.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	return stage.RequireInputs(StageName, stage.Input{Name: "normalized audio", Value: job.NormalizedAudioArtifactID})
}

// Execute transcribes the narration and stores the SRT.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	dir := filepath.Join(s.workDir, job.ID, StageName)

	source, err := blobstore.Materialize(ctx, s.store, job.NormalizedAudioArtifactID, dir, "narration.wav")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "materialize audio", job.NormalizedAudioArtifactID, err)
	}
	srtPath, err := retry.Do(ctx, s.policy, "transcribe narration", func(ctx context.Context) (string, error) {
		return s.transcriber.Transcribe(ctx, source, filepath.Join(dir, "whisperx"))
	})
	if err != nil {
		return err
	}
	cues, err := CountCues(srtPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "read subtitles", srtPath, err)
	}
	if cues == 0 {
		return services.Wrap(services.ErrEmptyResult, StageName, "transcribe", "transcription produced no subtitle cues", nil)
	}

	id, err := blobstore.PutFile(ctx, s.store, srtPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "store", "subtitles", err)
	}
	if err := job.SetSubtitleArtifactID(id); err != nil {
		return err
	}
	logger.Info("narration transcribed",
		logging.String("artifact_id", id),
		logging.Int("cues", cues),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// HealthCheck reports collaborator wiring.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.transcriber == nil {
		return stage.Unhealthy(StageName, "transcriber not configured")
	}
	if s.store == nil {
		return stage.Unhealthy(StageName, "blob store not configured")
	}
	return stage.Healthy(StageName)
}
