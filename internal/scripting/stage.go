package scripting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/stage"
	"promptreel/internal/textutil"
)

// StageName identifies the metadata stage in logs and job progress.
const StageName = "metadata"

// TextGenerator produces text from a system prompt and user prompt.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Metadata is the text produced for one job.
type Metadata struct {
	Script           string
	Title            string
	Description      string
	Tags             []string
	ImageSearchQuery string
	VideoSearchQuery string
}

// Stage generates the job's text fields.
type Stage struct {
	generator TextGenerator
	policy    retry.Policy
	logger    *slog.Logger
}

// NewStage constructs the metadata stage handler.
func NewStage(generator TextGenerator, policy retry.Policy, logger *slog.Logger) *Stage {
	s := &Stage{generator: generator, policy: policy}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the stage logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
	s.policy = s.policy.WithLogger(s.logger)
}

// Prepare checks the job carries a prompt.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	return stage.RequireInputs(StageName, stage.Input{Name: "prompt", Value: job.Prompt})
}

// Execute runs the six generation requests concurrently and records the
// results once all of them succeeded.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	meta, err := s.Generate(ctx, job.Prompt)
	if err != nil {
		return err
	}
	if err := apply(job, meta); err != nil {
		return err
	}
	logger.Info("metadata generated",
		logging.String("title", meta.Title),
		logging.Int("script_chars", len([]rune(meta.Script))),
		logging.Int("tag_count", len(meta.Tags)),
		logging.String("video_query", meta.VideoSearchQuery),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// Generate issues the six requests for prompt.
func (s *Stage) Generate(ctx context.Context, prompt string) (Metadata, error) {
	var meta Metadata
	g, gctx := errgroup.WithContext(ctx)

	text := func(name, system string, dest *string, clean func(string) string) {
		g.Go(func() error {
			out, err := retry.Do(gctx, s.policy, name, func(ctx context.Context) (string, error) {
				return s.generator.Generate(ctx, system, prompt)
			})
			if err != nil {
				return fmt.Errorf("generate %s: %w", name, err)
			}
			if *dest = clean(out); *dest == "" {
				return services.Wrap(services.ErrEmptyResult, StageName, "generate "+name, "model returned blank text", nil)
			}
			return nil
		})
	}
	text("script", ScriptPrompt, &meta.Script, strings.TrimSpace)
	text("title", TitlePrompt, &meta.Title, textutil.StripQuotes)
	text("description", DescriptionPrompt, &meta.Description, strings.TrimSpace)
	text("image search query", ImageQueryPrompt, &meta.ImageSearchQuery, textutil.StripQuotes)
	text("video search query", VideoQueryPrompt, &meta.VideoSearchQuery, textutil.StripQuotes)
	g.Go(func() error {
		raw, err := retry.Do(gctx, s.policy, "tags", func(ctx context.Context) (string, error) {
			return s.generator.Generate(ctx, TagsPrompt, prompt)
		})
		if err != nil {
			return fmt.Errorf("generate tags: %w", err)
		}
		tags, err := ParseTags(raw)
		if err != nil {
			return err
		}
		meta.Tags = tags
		return nil
	})

	if err := g.Wait(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func apply(job *jobs.Job, meta Metadata) error {
	return errors.Join(
		job.SetScript(meta.Script),
		job.SetTitle(meta.Title),
		job.SetDescription(meta.Description),
		job.SetTags(meta.Tags),
		job.SetImageSearchQuery(meta.ImageSearchQuery),
		job.SetVideoSearchQuery(meta.VideoSearchQuery),
	)
}

// HealthCheck reports generator readiness.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.generator == nil {
		return stage.Unhealthy(StageName, "text generator not configured")
	}
	return stage.Healthy(StageName)
}
