package composition

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/services"
	"promptreel/internal/stage"
)

// StageName identifies the composition stage.
const StageName = "composition"

// Composer is the engine surface the stage drives.
type Composer interface {
	Probe(ctx context.Context, path string) (Clip, error)
	Concat(ctx context.Context, clips []Clip, output string) (Result, error)
	Mix(ctx context.Context, in MixInput, output string) (Result, error)
}

// Stage composes the final video from the stored artifacts.
type Stage struct {
	composer Composer
	store    blobstore.Store
	workDir  string
	fontName string
	logger   *slog.Logger
}

// NewStage constructs the composition stage.
func NewStage(composer Composer, store blobstore.Store, workDir, fontName string, logger *slog.Logger) *Stage {
	s := &Stage{composer: composer, store: store, workDir: workDir, fontName: fontName}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the stage logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
}

// Prepare checks every required artifact id is present.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	if err := stage.RequireInputs(StageName,
		stage.Input{Name: "normalized narration", Value: job.NormalizedAudioArtifactID},
		stage.Input{Name: "subtitles", Value: job.SubtitleArtifactID},
		stage.Input{Name: "thumbnail", Value: job.ThumbnailArtifactID},
	); err != nil {
		return err
	}
	return stage.RequireList(StageName, "video clips", job.VideoClipArtifactIDs)
}

// Execute runs Phase A and Phase B and stores the final video.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()
	dir := filepath.Join(s.workDir, job.ID, StageName)

	clips := make([]Clip, 0, len(job.VideoClipArtifactIDs))
	for i, id := range job.VideoClipArtifactIDs {
		path, err := s.materialize(ctx, id, dir, fmt.Sprintf("clip_%02d%s", i, filepath.Ext(id)))
		if err != nil {
			return err
		}
		clip, err := s.composer.Probe(ctx, path)
		if err != nil {
			return err
		}
		clips = append(clips, clip)
	}
	joined, err := s.composer.Concat(ctx, clips, filepath.Join(dir, "concat.mp4"))
	if err != nil {
		return err
	}
	logger.Debug("clips concatenated",
		logging.Int("clip_count", len(clips)),
		logging.Float64("duration_seconds", joined.DurationSeconds),
	)

	in := MixInput{Video: joined.Path, FontName: s.fontName}
	if in.Narration, err = s.materialize(ctx, job.NormalizedAudioArtifactID, dir, "narration"+filepath.Ext(job.NormalizedAudioArtifactID)); err != nil {
		return err
	}
	if in.Subtitles, err = s.materialize(ctx, job.SubtitleArtifactID, dir, "subtitles.srt"); err != nil {
		return err
	}
	if in.Thumbnail, err = s.materialize(ctx, job.ThumbnailArtifactID, dir, "thumbnail"+filepath.Ext(job.ThumbnailArtifactID)); err != nil {
		return err
	}
	if job.MusicArtifactID != "" {
		if in.Music, err = s.materialize(ctx, job.MusicArtifactID, dir, "music"+filepath.Ext(job.MusicArtifactID)); err != nil {
			return err
		}
	}

	final, err := s.composer.Mix(ctx, in, filepath.Join(dir, "final.mp4"))
	if err != nil {
		return err
	}
	id, err := blobstore.PutFile(ctx, s.store, final.Path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageName, "store", "final video", err)
	}
	if err := job.SetFinalArtifactID(id); err != nil {
		return err
	}
	logger.Info("video composed",
		logging.String("artifact_id", id),
		logging.Float64("duration_seconds", final.DurationSeconds),
		logging.Bool("music", in.Music != ""),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *Stage) materialize(ctx context.Context, id, dir, name string) (string, error) {
	path, err := blobstore.Materialize(ctx, s.store, id, dir, name)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, StageName, "materialize", id, err)
	}
	return path, nil
}

// HealthCheck reports collaborator wiring.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.composer == nil {
		return stage.Unhealthy(StageName, "composer not configured")
	}
	if s.store == nil {
		return stage.Unhealthy(StageName, "blob store not configured")
	}
	return stage.Healthy(StageName)
}
