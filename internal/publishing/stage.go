package publishing

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
	"promptreel/internal/language"
	"promptreel/internal/logging"
	"promptreel/internal/retry"
	"promptreel/internal/services"
	"promptreel/internal/services/youtube"
	"promptreel/internal/stage"
	"promptreel/internal/textutil"
)

// StageName identifies the publish stage.
const StageName = "publish"

// Platform limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
	MaxTagsLength        = 500
)

const (
	defaultCategory = "28"
	defaultPrivacy  = "private"
	defaultLanguage = "en"
)

// Publisher uploads a video.
type Publisher interface {
	Upload(ctx context.Context, meta youtube.Metadata, media io.Reader) (youtube.Result, error)
}

// Options carries upload defaults.
type Options struct {
	CategoryID      string
	PrivacyStatus   string
	DefaultLanguage string
	MadeForKids     bool
}

// Stage publishes the final video.
type Stage struct {
	publisher Publisher
	store     blobstore.Store
	policy    retry.Policy
	opts      Options
	logger    *slog.Logger
}

// NewStage constructs the publish stage.
func NewStage(publisher Publisher, store blobstore.Store, policy retry.Policy, opts Options, logger *slog.Logger) *Stage {
	s := &Stage{publisher: publisher, store: store, policy: policy, opts: opts}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the stage logging destination.
func (s *Stage) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, StageName)
	s.policy = s.policy.WithLogger(s.logger)
}

// Prepare requires the final video and a title.
func (s *Stage) Prepare(_ context.Context, job *jobs.Job) error {
	return stage.RequireInputs(StageName,
		stage.Input{Name: "final video", Value: job.FinalArtifactID},
		stage.Input{Name: "title", Value: job.Title},
	)
}

// BuildMetadata clips the job metadata to platform limits and applies upload
// defaults.
func BuildMetadata(job *jobs.Job, opts Options) youtube.Metadata {
	meta := youtube.Metadata{
		Title:           textutil.Truncate(strings.TrimSpace(job.Title), MaxTitleLength),
		Description:     textutil.Truncate(strings.TrimSpace(job.Description), MaxDescriptionLength),
		Tags:            textutil.LimitTags(job.Tags, MaxTagsLength),
		CategoryID:      strings.TrimSpace(opts.CategoryID),
		PrivacyStatus:   strings.ToLower(strings.TrimSpace(opts.PrivacyStatus)),
		DefaultLanguage: language.Canonical(opts.DefaultLanguage),
		MadeForKids:     opts.MadeForKids,
	}
	if meta.CategoryID == "" {
		meta.CategoryID = defaultCategory
	}
	if meta.PrivacyStatus == "" {
		meta.PrivacyStatus = defaultPrivacy
	}
	if meta.DefaultLanguage == "" {
		meta.DefaultLanguage = defaultLanguage
	}
	return meta
}

// Execute uploads the final video. Every attempt streams the artifact from
// the start.
func (s *Stage) Execute(ctx context.Context, job *jobs.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	meta := BuildMetadata(job, s.opts)
	if len(meta.Tags) < len(job.Tags) {
		logger.Debug("tags trimmed to platform limit",
			logging.Int("kept", len(meta.Tags)),
			logging.Int("total", len(job.Tags)),
		)
	}

	result, err := retry.Do(ctx, s.policy, "upload video", func(ctx context.Context) (youtube.Result, error) {
		media, err := s.store.Get(ctx, job.FinalArtifactID)
		if err != nil {
			return youtube.Result{}, err
		}
		defer media.Close()
		return s.publisher.Upload(ctx, meta, media)
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(result.ID) == "" {
		return services.Wrap(services.ErrEmptyResult, StageName, "upload", "publisher returned no video id", nil)
	}
	if result.URL == "" {
		result.URL = youtube.WatchURL(result.ID)
	}
	if err := job.SetPublication(result.ID, result.URL); err != nil {
		return err
	}
	logger.Info("video published",
		logging.String("published_id", result.ID),
		logging.String("url", result.URL),
		logging.String("privacy", meta.PrivacyStatus),
	)
	return nil
}

// HealthCheck reports collaborator wiring.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.publisher == nil {
		return stage.Unhealthy(StageName, "publisher not configured")
	}
	if s.store == nil {
		return stage.Unhealthy(StageName, "blob store not configured")
	}
	return stage.Healthy(StageName)
}
