package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"promptreel/internal/services"
)

const (
	defaultGeminiBase  = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel = "gemini-2.5-flash-lite"
)

// GeminiClient wraps the Gemini generateContent API.
type GeminiClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewGeminiClient constructs a Gemini client.
func NewGeminiClient(cfg Config, opts ...Option) *GeminiClient {
	cfg = trimConfig(cfg)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	return &GeminiClient{cfg: cfg, httpClient: buildHTTPClient(cfg, opts)}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends the system prompt as a system instruction and the user
// prompt as the single content turn.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := checkPrompts(c.cfg, systemPrompt, userPrompt); err != nil {
		return "", err
	}
	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: strings.TrimSpace(systemPrompt)}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: strings.TrimSpace(userPrompt)}},
		}},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := doRequest(c.httpClient, req)
	if err != nil {
		return "", err
	}
	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrTransient, "llm", "decode response",
			summarizePayloadSnippet(string(body)), err)
	}
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	reason := ""
	if parsed.PromptFeedback != nil {
		reason = parsed.PromptFeedback.BlockReason
	}
	return "", services.Wrap(services.ErrEmptyResult, "llm", "generate",
		fmt.Sprintf("gemini returned no text (block_reason=%q)", reason), nil)
}

// HealthCheck issues a tiny request to verify the key and model.
func (c *GeminiClient) HealthCheck(ctx context.Context) error {
	_, err := c.Generate(ctx, "Reply with the single word ok.", "ping")
	return err
}
