package acquisition

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/services/pixabay"
	"promptreel/internal/services/speech"
	"promptreel/internal/stage"
)

// StageName identifies the acquisition stage.
const StageName = "acquisition"

// Synthesizer turns the script into narration audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (*speech.Audio, error)
}

// MediaSearcher finds and streams stock media.
type MediaSearcher interface {
	SearchVideos(ctx context.Context, query string, perPage int) ([]pixabay.Asset, error)
	SearchIllustrations(ctx context.Context, query string, perPage int) ([]pixabay.Asset, error)
	SearchMusic(ctx context.Context, query string) (pixabay.Asset, bool, error)
	Open(ctx context.Context, asset pixabay.Asset) (io.ReadCloser, error)
}

// ThumbnailRenderer draws a title card into dir and returns its path.
type ThumbnailRenderer interface {
	Render(ctx context.Context, text, dir string) (string, error)
}

// Options carries stage settings.
type Options struct {
	WorkDir   string
	ClipCount int
	Voice     string
}

// Stage acquires narration, clips, thumbnail and music for a job.
type Stage struct {
	speech   Synthesizer
	media    MediaSearcher
	renderer ThumbnailRenderer
	store    blobstore.Store
	policy   retry.Policy
	opts     Options
	logger   *slog.Logger
}

// NewStage constructs the acquisition stage handler.
func NewStage(synth Synthesizer, media MediaSearcher, renderer ThumbnailRenderer, store blobstore.Store, policy retry.Policy, opts Options, logger *slog.Logger) *Stage {
	if opts.ClipCount <= 0 {
		opts.ClipCount = 3
	}
	s := &Stage{
		speech:   synth,
		media:    media,
		renderer: renderer,
		store:    store,
		policy:   policy,
		opts:     opts,
	}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the stage logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
	s.policy = s.policy.WithLogger(s.logger)
}

// Prepare checks the metadata this stage consumes.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	return stage.RequireInputs(StageName,
		stage.Input{Name: "script", Value: job.Script},
		stage.Input{Name: "video search query", Value: job.VideoSearchQuery},
		stage.Input{Name: "image search query", Value: job.ImageSearchQuery},
	)
}

// Execute runs the four acquisition branches concurrently.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	workDir := filepath.Join(s.opts.WorkDir, job.ID, StageName)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, StageName, "work dir", workDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := s.narration(gctx, job.Script)
		if err != nil {
			return err
		}
		logger.Debug("narration stored", logging.String("artifact_id", id))
		return job.SetAudioArtifactID(id)
	})
	g.Go(func() error {
		ids, err := s.clips(gctx, job.VideoSearchQuery)
		if err != nil {
			return err
		}
		logger.Debug("clips stored", logging.Int("count", len(ids)))
		return job.SetVideoClipArtifactIDs(ids)
	})
	g.Go(func() error {
		id, err := s.thumbnail(gctx, logger, job, workDir)
		if err != nil {
			return err
		}
		return job.SetThumbnailArtifactID(id)
	})
	g.Go(func() error {
		id := s.music(gctx, logger, musicQuery(job))
		if id == "" {
			return nil
		}
		return job.SetMusicArtifactID(id)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("media acquired",
		logging.Int("clip_count", len(job.VideoClipArtifactIDs)),
		logging.Bool("music", job.MusicArtifactID != ""),
	)
	return nil
}

func (s *Stage) narration(ctx context.Context, script string) (string, error) {
	return retry.Do(ctx, s.policy, "synthesize narration", func(ctx context.Context) (string, error) {
		audio, err := s.speech.Synthesize(ctx, script, s.opts.Voice)
		if err != nil {
			return "", err
		}
		defer audio.Body.Close()
		return s.store.Put(ctx, audio.Body, "narration"+audio.Extension)
	})
}

func (s *Stage) clips(ctx context.Context, query string) ([]string, error) {
	assets, err := retry.Do(ctx, s.policy, "search clips", func(ctx context.Context) ([]pixabay.Asset, error) {
		return s.media.SearchVideos(ctx, query, s.opts.ClipCount)
	})
	if err != nil {
		return nil, err
	}
	if len(assets) > s.opts.ClipCount {
		assets = assets[:s.opts.ClipCount]
	}
	if len(assets) == 0 {
		return nil, services.Wrap(services.ErrEmptyResult, StageName, "search clips",
			fmt.Sprintf("no clips found for %q", query), nil)
	}
	ids := make([]string, 0, len(assets))
	for _, asset := range assets {
		id, err := s.download(ctx, "download clip", asset)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Stage) thumbnail(ctx context.Context, logger *slog.Logger, job *jobs.Job, workDir string) (string, error) {
	path, renderErr := s.renderer.Render(ctx, job.Script, filepath.Join(workDir, "thumbnail"))
	if renderErr == nil && strings.TrimSpace(path) == "" {
		renderErr = services.Wrap(services.ErrEmptyResult, StageName, "thumbnail", "renderer produced no image", nil)
	}
	if renderErr == nil {
		return blobstore.PutFile(ctx, s.store, path)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	logging.WarnWithContext(logger, "thumbnail render failed; searching illustrations", "thumbnail_fallback",
		logging.Error(renderErr),
		logging.ErrorKind(renderErr),
		logging.String(logging.FieldImpact, "stock illustration used as thumbnail"),
		logging.String(logging.FieldErrorHint, "check ffmpeg drawtext support"),
	)

	assets, err := retry.Do(ctx, s.policy, "search illustrations", func(ctx context.Context) ([]pixabay.Asset, error) {
		return s.media.SearchIllustrations(ctx, job.ImageSearchQuery, 3)
	})
	if err != nil {
		return "", err
	}
	if len(assets) == 0 {
		return "", services.Wrap(services.ErrEmptyResult, StageName, "thumbnail",
			"render failed and no illustration found", renderErr)
	}
	return s.download(ctx, "download illustration", assets[0])
}

// music never fails the stage; problems are logged and leave the id empty.
func (s *Stage) music(ctx context.Context, logger *slog.Logger, query string) string {
	warn := func(msg string, err error) {
		attrs := []logging.Attr{
			logging.String("query", query),
			logging.String(logging.FieldImpact, "video will have narration only"),
			logging.String(logging.FieldErrorHint, "background music is optional"),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err), logging.ErrorKind(err))
		}
		logging.WarnWithContext(logger, msg, "music_skipped", attrs...)
	}
	if query == "" {
		warn("no music query available", nil)
		return ""
	}
	type found struct {
		asset pixabay.Asset
		ok    bool
	}
	res, err := retry.Do(ctx, s.policy, "search music", func(ctx context.Context) (found, error) {
		asset, ok, err := s.media.SearchMusic(ctx, query)
		return found{asset, ok}, err
	})
	if err != nil {
		warn("music search failed", err)
		return ""
	}
	if !res.ok {
		warn("no music found", nil)
		return ""
	}
	id, err := s.download(ctx, "download music", res.asset)
	if err != nil {
		warn("music download failed", err)
		return ""
	}
	return id
}

func (s *Stage) download(ctx context.Context, name string, asset pixabay.Asset) (string, error) {
	return retry.Do(ctx, s.policy, name, func(ctx context.Context) (string, error) {
		body, err := s.media.Open(ctx, asset)
		if err != nil {
			return "", err
		}
		defer body.Close()
		return s.store.Put(ctx, body, asset.Filename())
	})
}

func musicQuery(job *jobs.Job) string {
	for _, tag := range job.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			return tag
		}
	}
	return strings.TrimSpace(job.VideoSearchQuery)
}

// HealthCheck reports collaborator wiring.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	switch {
	case s.speech == nil:
		return stage.Unhealthy(StageName, "speech synthesizer not configured")
	case s.media == nil:
		return stage.Unhealthy(StageName, "media searcher not configured")
	case s.renderer == nil:
		return stage.Unhealthy(StageName, "thumbnail renderer not configured")
	case s.store == nil:
		return stage.Unhealthy(StageName, "blob store not configured")
	}
	return stage.Healthy(StageName)
}

