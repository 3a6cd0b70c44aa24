// Package youtube uploads finished videos through the YouTube Data API v3
// using a stored OAuth refresh token.
package youtube

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"promptreel/internal/services"
)

// WatchURLPrefix is prepended to video ids to form the public URL.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

// Config captures OAuth client credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Metadata describes the uploaded video.
type Metadata struct {
	Title           string
	Description     string
	Tags            []string
	CategoryID      string
	PrivacyStatus   string
	DefaultLanguage string
	MadeForKids     bool
}

// Result identifies the published video.
type Result struct {
	ID  string
	URL string
}

// Publisher uploads videos.
type Publisher struct {
	cfg  Config
	opts []option.ClientOption
}

// NewPublisher builds a publisher. Extra client options replace the OAuth
// transport when they include option.WithHTTPClient (tests do this).
func NewPublisher(cfg Config, opts ...option.ClientOption) *Publisher {
	return &Publisher{cfg: cfg, opts: opts}
}

func (p *Publisher) service(ctx context.Context) (*yt.Service, error) {
	if len(p.opts) > 0 {
		return yt.NewService(ctx, p.opts...)
	}
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" || p.cfg.RefreshToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "youtube auth",
			"client_id, client_secret and refresh_token are required", nil)
	}
	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{yt.YoutubeUploadScope, yt.YoutubeScope},
	}
	token := &oauth2.Token{
		RefreshToken: p.cfg.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return yt.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
}

// Upload streams media to YouTube with meta and returns the video id and URL.
func (p *Publisher) Upload(ctx context.Context, meta Metadata, media io.Reader) (Result, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return Result{}, err
	}
	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           meta.CategoryID,
			DefaultLanguage:      meta.DefaultLanguage,
			DefaultAudioLanguage: meta.DefaultLanguage,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           meta.PrivacyStatus,
			SelfDeclaredMadeForKids: meta.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media).
		Context(ctx).
		Do()
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "publish", "youtube upload", "", err)
	}
	id := strings.TrimSpace(uploaded.Id)
	if id == "" {
		return Result{}, services.Wrap(services.ErrEmptyResult, "publish", "youtube upload", "response carried no video id", nil)
	}
	return Result{ID: id, URL: WatchURL(id)}, nil
}

// WatchURL returns the public URL for id.
func WatchURL(id string) string {
	return fmt.Sprintf("%s%s", WatchURLPrefix, id)
}

// HealthCheck verifies credentials are configured.
func (p *Publisher) HealthCheck(context.Context) error {
	if len(p.opts) > 0 {
		return nil
	}
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" || p.cfg.RefreshToken == "" {
		return services.Wrap(services.ErrConfiguration, "publish", "health", "youtube credentials missing", nil)
	}
	return nil
}
