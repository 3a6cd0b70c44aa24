package audioprep

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/media/ffprobe"
	"promptreel/internal/services"
	"promptreel/internal/services/whisperx"
	"promptreel/internal/stage"
)

// StageName identifies the audio normalization stage.
const StageName = "normalize"

const (
	targetChannels   = 1
	targetSampleRate = 16000
	outputName       = "narration.wav"
)

// Normalizer converts source audio into a transcription-ready WAV at dest.
type Normalizer interface {
	Normalize(ctx context.Context, source, dest string) error
}

// Prober inspects media files.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// FFmpegNormalizer runs ffmpeg through the WhisperX extraction helper.
type FFmpegNormalizer struct {
	Binary string
	Run    whisperx.CommandRunner
}

// Normalize implements Normalizer.
func (n FFmpegNormalizer) Normalize(ctx context.Context, source, dest string) error {
	return whisperx.NormalizeAudio(ctx, n.Run, n.Binary, source, dest)
}

// Stage normalizes the narration artifact.
type Stage struct {
	normalizer Normalizer
	prober     Prober
	store      blobstore.Store
	workDir    string
	logger     *slog.Logger
}

// NewStage constructs the normalization stage. prober may be nil to skip
// output verification.
func NewStage(normalizer Normalizer, prober Prober, store blobstore.Store, workDir string, logger *slog.Logger) *Stage {
	s := &Stage{normalizer: normalizer, prober: prober, store: store, workDir: workDir}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the stage logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
}

// Prepare requires the raw narration.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	return stage.RequireInputs(StageName, stage.Input{Name: "narration audio", Value: job.AudioArtifactID})
}

// Execute converts the narration and records the normalized artifact.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	dir := filepath.Join(s.workDir, job.ID, StageName)

	source, err := blobstore.Materialize(ctx, s.store, job.AudioArtifactID, dir, job.AudioArtifactID)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "materialize narration", job.AudioArtifactID, err)
	}
	dest := filepath.Join(dir, outputName)
	if err := s.normalizer.Normalize(ctx, source, dest); err != nil {
		return err
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrEmptyResult, StageName, "normalize", "normalized audio missing or empty", err)
	}
	if err := s.verify(ctx, dest); err != nil {
		return err
	}

	id, err := blobstore.PutFile(ctx, s.store, dest)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "store", "normalized audio", err)
	}
	if err := job.SetNormalizedAudioArtifactID(id); err != nil {
		return err
	}
	logger.Info("narration normalized",
		logging.String("artifact_id", id),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *Stage) verify(ctx context.Context, path string) error {
	if s.prober == nil {
		return nil
	}
	result, err := s.prober.Inspect(ctx, path)
	if err != nil {
		return err
	}
	audio, ok := result.FirstAudio()
	if !ok {
		return services.Wrap(services.ErrExternalTool, StageName, "verify", "normalized file has no audio stream", nil)
	}
	if audio.Channels != targetChannels || audio.SampleRateHz() != targetSampleRate {
		return services.Wrap(services.ErrExternalTool, StageName, "verify",
			fmt.Sprintf("expected %d channel %d Hz audio, got %d channels %d Hz",
				targetChannels, targetSampleRate, audio.Channels, audio.SampleRateHz()), nil)
	}
	return nil
}

// HealthCheck reports collaborator wiring.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.normalizer == nil {
		return stage.Unhealthy(StageName, "normalizer not configured")
	}
	if s.store == nil {
		return stage.Unhealthy(StageName, "blob store not configured")
	}
	return stage.Healthy(StageName)
}
