package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by ValidateCredentials so CLI clients can run without them.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateCredentials reports the first missing collaborator credential the
// daemon needs to run jobs.
func (c *Config) ValidateCredentials() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	if c.LLM.APIKey == "" {
		env := "OPENROUTER_API_KEY"
		if c.LLM.Provider == "gemini" {
			env = "GEMINI_API_KEY"
		}
		return fmt.Errorf("llm.api_key is required. Set %s env var or edit %s (create with 'promptreel config init')", env, defaultPath)
	}
	if c.Media.PixabayAPIKey == "" {
		return fmt.Errorf("media.pixabay_api_key is required. Set PIXABAY_API_KEY env var or edit %s", defaultPath)
	}
	if c.Speech.APIKey == "" {
		return fmt.Errorf("speech.api_key is required. Set TTS_API_KEY env var or edit %s", defaultPath)
	}
	if !c.PublishEnabled() {
		return errors.New("publish.client_id, publish.client_secret and publish.refresh_token must be set (or YOUTUBE_* env vars)")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "sqlite":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url must be set when storage.backend is postgres (or DATABASE_URL env var)")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (expected sqlite or postgres)", c.Storage.Backend)
	}
	if c.Storage.BlobDir == "" {
		return errors.New("storage.blob_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "openrouter", "gemini":
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (expected openrouter or gemini)", c.LLM.Provider)
	}
	return nil
}

func (c *Config) validatePublish() error {
	switch c.Publish.PrivacyStatus {
	case "private", "unlisted", "public":
	default:
		return fmt.Errorf("publish.privacy_status: unsupported value %q", c.Publish.PrivacyStatus)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"retry.max_attempts":             c.Retry.MaxAttempts,
		"workflow.poll_interval_seconds": c.Workflow.PollIntervalSeconds,
		"workflow.max_concurrent_jobs":   c.Workflow.MaxConcurrentJobs,
		"media.clips_per_query":          c.Media.ClipsPerQuery,
		"llm.timeout_seconds":            c.LLM.TimeoutSeconds,
		"speech.timeout_seconds":         c.Speech.TimeoutSeconds,
		"media.timeout_seconds":          c.Media.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Retry.BaseDelayMillis < 0 {
		return errors.New("retry.base_delay_ms must not be negative")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	if c.API.DefaultLimit > c.API.MaxLimit {
		return errors.New("api.default_limit must not exceed api.max_limit")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
