package daemonrun

import (
	"fmt"
	"log/slog"

	"promptreel/internal/acquisition"
	"promptreel/internal/audioprep"
	"promptreel/internal/blobstore"
	"promptreel/internal/composition"
	"promptreel/internal/config"
	"promptreel/internal/media/ffmpeg"
	"promptreel/internal/media/ffprobe"
	"promptreel/internal/publishing"
	"promptreel/internal/retry"
	"promptreel/internal/scripting"
	"promptreel/internal/services/llm"
	"promptreel/internal/services/pixabay"
	"promptreel/internal/services/speech"
	"promptreel/internal/services/thumbnail"
	"promptreel/internal/services/whisperx"
	"promptreel/internal/services/youtube"
	"promptreel/internal/transcription"
	"promptreel/internal/workflow"
)

// RetryPolicy maps the [retry] section onto a policy.
func RetryPolicy(cfg *config.Config, logger *slog.Logger) retry.Policy {
	return retry.Policy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		BaseDelay:      cfg.RetryBaseDelay(),
		AttemptTimeout: cfg.RetryAttemptTimeout(),
	}.WithLogger(logger)
}

// BuildStages constructs every collaborator from cfg and wires the six
// pipeline stages around the artifact store.
func BuildStages(cfg *config.Config, logger *slog.Logger) (workflow.StageSet, error) {
	store, err := blobstore.NewFSStore(cfg.Storage.BlobDir)
	if err != nil {
		return workflow.StageSet{}, fmt.Errorf("open blob store: %w", err)
	}
	generator, err := llm.New(llm.Config{
		Provider:       cfg.LLM.Provider,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	if err != nil {
		return workflow.StageSet{}, err
	}

	policy := RetryPolicy(cfg, logger)
	runner := ffmpeg.ExecRunner{}
	prober := ffprobe.Prober{Binary: cfg.Composition.FFprobeBinary}
	workDir := cfg.Paths.WorkDir

	synth := speech.NewClient(speech.Config{
		BaseURL:        cfg.Speech.BaseURL,
		APIKey:         cfg.Speech.APIKey,
		Model:          cfg.Speech.Model,
		Voice:          cfg.Speech.Voice,
		TimeoutSeconds: cfg.Speech.TimeoutSeconds,
	}, nil)
	media := pixabay.NewClient(pixabay.Config{
		APIKey:         cfg.Media.PixabayAPIKey,
		BaseURL:        cfg.Media.PixabayBaseURL,
		TimeoutSeconds: cfg.Media.TimeoutSeconds,
	}, nil)
	renderer := thumbnail.NewRenderer(cfg.Composition.FFmpegBinary, runner)
	transcriber := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		Language:    cfg.Transcription.Language,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
	})
	normalizer := audioprep.FFmpegNormalizer{Binary: cfg.Composition.FFmpegBinary, Run: whisperx.ExecRunner}
	engine := composition.NewEngine(cfg.Composition.FFmpegBinary, runner, prober)
	publisher := youtube.NewPublisher(youtube.Config{
		ClientID:     cfg.Publish.ClientID,
		ClientSecret: cfg.Publish.ClientSecret,
		RefreshToken: cfg.Publish.RefreshToken,
	})

	return workflow.StageSet{
		Metadata: scripting.NewStage(generator, policy, logger),
		Acquisition: acquisition.NewStage(synth, media, renderer, store, policy, acquisition.Options{
			WorkDir:   workDir,
			ClipCount: cfg.Media.ClipsPerQuery,
			Voice:     cfg.Speech.Voice,
		}, logger),
		Normalization: audioprep.NewStage(normalizer, prober, store, workDir, logger),
		Transcription: transcription.NewStage(transcriber, store, policy, workDir, logger),
		Composition:   composition.NewStage(engine, store, workDir, cfg.Composition.FontName, logger),
		Publish: publishing.NewStage(publisher, store, policy, publishing.Options{
			CategoryID:      cfg.Publish.CategoryID,
			PrivacyStatus:   cfg.Publish.PrivacyStatus,
			DefaultLanguage: cfg.Publish.DefaultLanguage,
			MadeForKids:     cfg.Publish.MadeForKids,
		}, logger),
	}, nil
}
