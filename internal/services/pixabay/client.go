// Package pixabay searches the Pixabay stock media API for video clips,
// illustrations and music, and streams the selected files.
package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"promptreel/internal/services"
)

const (
	defaultBaseURL     = "https://pixabay.com/api"
	defaultHTTPTimeout = 120 * time.Second
	defaultPerPage     = 3
)

// Kind identifies the media family an Asset belongs to.
type Kind string

const (
	KindVideo        Kind = "video"
	KindIllustration Kind = "illustration"
	KindMusic        Kind = "music"
)

// Asset is a downloadable search hit.
type Asset struct {
	Kind Kind
	ID   int64
	URL  string
}

// Filename suggests a storage name carrying the asset's extension.
func (a Asset) Filename() string {
	ext := strings.ToLower(path.Ext(strings.SplitN(a.URL, "?", 2)[0]))
	if ext == "" || len(ext) > 5 {
		switch a.Kind {
		case KindVideo:
			ext = ".mp4"
		case KindMusic:
			ext = ".mp3"
		default:
			ext = ".jpg"
		}
	}
	return fmt.Sprintf("%s_%d%s", a.Kind, a.ID, ext)
}

// Config captures the Pixabay API settings.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client talks to the Pixabay API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client; a nil httpClient uses the configured timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if httpClient == nil {
		timeout := defaultHTTPTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

type videoSize struct {
	URL string `json:"url"`
}

type searchResponse struct {
	Total int `json:"total"`
	Hits  []struct {
		ID            int64  `json:"id"`
		LargeImageURL string `json:"largeImageURL"`
		Audio         string `json:"audio"`
		Videos        struct {
			Large  videoSize `json:"large"`
			Medium videoSize `json:"medium"`
		} `json:"videos"`
	} `json:"hits"`
}

// SearchVideos returns up to perPage clips, preferring the large rendition.
func (c *Client) SearchVideos(ctx context.Context, query string, perPage int) ([]Asset, error) {
	resp, err := c.search(ctx, "videos/", query, perPage, nil)
	if err != nil {
		return nil, err
	}
	assets := make([]Asset, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		u := hit.Videos.Large.URL
		if u == "" {
			u = hit.Videos.Medium.URL
		}
		if u != "" {
			assets = append(assets, Asset{Kind: KindVideo, ID: hit.ID, URL: u})
		}
	}
	return assets, nil
}

// SearchIllustrations returns safe-search vector illustrations.
func (c *Client) SearchIllustrations(ctx context.Context, query string, perPage int) ([]Asset, error) {
	extra := url.Values{"image_type": {"vector"}, "safesearch": {"true"}}
	resp, err := c.search(ctx, "", query, perPage, extra)
	if err != nil {
		return nil, err
	}
	assets := make([]Asset, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.LargeImageURL != "" {
			assets = append(assets, Asset{Kind: KindIllustration, ID: hit.ID, URL: hit.LargeImageURL})
		}
	}
	return assets, nil
}

// SearchMusic returns the first hit's audio track, or ok=false when the
// search produced nothing usable.
func (c *Client) SearchMusic(ctx context.Context, query string) (Asset, bool, error) {
	resp, err := c.search(ctx, "music/", query, defaultPerPage, nil)
	if err != nil {
		return Asset{}, false, err
	}
	if len(resp.Hits) == 0 || resp.Hits[0].Audio == "" {
		return Asset{}, false, nil
	}
	return Asset{Kind: KindMusic, ID: resp.Hits[0].ID, URL: resp.Hits[0].Audio}, true, nil
}

// Open streams the asset body. Callers must close it.
func (c *Client) Open(ctx context.Context, asset Asset) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("pixabay download: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pixabay", "download", asset.URL, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, "pixabay", "download",
			fmt.Sprintf("http %d for %s", resp.StatusCode, asset.URL), nil)
	}
	return resp.Body, nil
}

// HealthCheck reports whether an API key is configured.
func (c *Client) HealthCheck(context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "pixabay", "health", "api key is empty", nil)
	}
	return nil
}

func (c *Client) search(ctx context.Context, endpoint, query string, perPage int, extra url.Values) (searchResponse, error) {
	var parsed searchResponse
	query = strings.TrimSpace(query)
	if query == "" {
		return parsed, services.Wrap(services.ErrValidation, "pixabay", "search", "query is empty", nil)
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	params := url.Values{}
	for k, v := range extra {
		params[k] = v
	}
	params.Set("key", c.cfg.APIKey)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(perPage))
	target := c.cfg.BaseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return parsed, fmt.Errorf("pixabay search: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parsed, services.Wrap(services.ErrTransient, "pixabay", "search", "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return parsed, services.Wrap(services.ErrTransient, "pixabay", "search",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return parsed, services.Wrap(services.ErrTransient, "pixabay", "search", "decode response", err)
	}
	return parsed, nil
}
