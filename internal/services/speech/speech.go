// Package speech synthesizes narration through an OpenAI-compatible
// text-to-speech endpoint.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"promptreel/internal/services"
)

const (
	defaultHTTPTimeout = 120 * time.Second
	defaultFormat      = "mp3"
)

// Config captures the TTS endpoint settings.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	Voice          string
	TimeoutSeconds int
}

// Client posts text to the speech endpoint and streams back audio.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a speech client. A nil httpClient uses a client with
// the configured timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := defaultHTTPTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Audio is a synthesized narration stream. Callers must close Body.
type Audio struct {
	Body        io.ReadCloser
	ContentType string
	// Extension is the suggested file extension including the dot.
	Extension string
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize converts text to speech. Empty text and empty audio responses
// are rejected.
func (c *Client) Synthesize(ctx context.Context, text, voice string) (*Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, services.Wrap(services.ErrValidation, "speech", "synthesize", "text is empty", nil)
	}
	if strings.TrimSpace(voice) == "" {
		voice = c.cfg.Voice
	}
	payload, err := json.Marshal(speechRequest{
		Model:          c.cfg.Model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: defaultFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("speech request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "speech", "synthesize", "request failed", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, "speech", "synthesize",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if resp.ContentLength == 0 {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrEmptyResult, "speech", "synthesize", "empty audio response", nil)
	}
	contentType := resp.Header.Get("Content-Type")
	return &Audio{
		Body:        &nonEmptyReader{rc: resp.Body},
		ContentType: contentType,
		Extension:   extensionFor(contentType),
	}, nil
}

// HealthCheck reports whether the client is configured.
func (c *Client) HealthCheck(context.Context) error {
	if strings.TrimSpace(c.cfg.BaseURL) == "" {
		return services.Wrap(services.ErrConfiguration, "speech", "health", "base_url is empty", nil)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "wav"):
		return ".wav"
	case strings.Contains(contentType, "ogg"), strings.Contains(contentType, "opus"):
		return ".ogg"
	case strings.Contains(contentType, "aac"):
		return ".aac"
	default:
		return ".mp3"
	}
}

// nonEmptyReader fails at EOF if no bytes were read, so chunked responses
// with no body surface as an empty result instead of a zero-length artifact.
type nonEmptyReader struct {
	rc   io.ReadCloser
	read int64
}

func (r *nonEmptyReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	r.read += int64(n)
	if err == io.EOF && r.read == 0 {
		return n, services.Wrap(services.ErrEmptyResult, "speech", "synthesize", "empty audio response", nil)
	}
	return n, err
}

func (r *nonEmptyReader) Close() error {
	return r.rc.Close()
}
