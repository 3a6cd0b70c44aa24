package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeSpeech()
	c.normalizeMedia()
	c.normalizeTranscription()
	c.normalizeComposition()
	c.normalizePublish()
	c.normalizeRetry()
	c.normalizeWorkflow()
	c.normalizeAPI()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.DatabaseURL = strings.TrimSpace(c.Storage.DatabaseURL)
	if c.Storage.DatabaseURL == "" {
		if value, ok := os.LookupEnv("DATABASE_URL"); ok {
			c.Storage.DatabaseURL = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Storage.BlobDir) == "" {
		c.Storage.BlobDir = defaultBlobDir
	}
	var err error
	if c.Storage.BlobDir, err = expandPath(c.Storage.BlobDir); err != nil {
		return fmt.Errorf("storage.blob_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		envKey := "OPENROUTER_API_KEY"
		if c.LLM.Provider == "gemini" {
			envKey = "GEMINI_API_KEY"
		}
		if value, ok := os.LookupEnv(envKey); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Provider == "gemini" {
		// The OpenRouter defaults do not apply to Gemini.
		if c.LLM.BaseURL == "" || c.LLM.BaseURL == defaultOpenRouterURL {
			c.LLM.BaseURL = defaultGeminiURL
		}
		if c.LLM.Model == "" || c.LLM.Model == defaultOpenRouterModel {
			c.LLM.Model = defaultGeminiModel
		}
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultOpenRouterURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultOpenRouterModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.APIKey == "" {
		if value, ok := os.LookupEnv("TTS_API_KEY"); ok {
			c.Speech.APIKey = strings.TrimSpace(value)
		}
	}
	c.Speech.BaseURL = strings.TrimSpace(c.Speech.BaseURL)
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultSpeechURL
	}
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	if c.Speech.Model == "" {
		c.Speech.Model = defaultSpeechModel
	}
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	if c.Speech.Voice == "" {
		c.Speech.Voice = defaultSpeechVoice
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeout
	}
}

func (c *Config) normalizeMedia() {
	c.Media.PixabayAPIKey = strings.TrimSpace(c.Media.PixabayAPIKey)
	if c.Media.PixabayAPIKey == "" {
		if value, ok := os.LookupEnv("PIXABAY_API_KEY"); ok {
			c.Media.PixabayAPIKey = strings.TrimSpace(value)
		}
	}
	c.Media.PixabayBaseURL = strings.TrimRight(strings.TrimSpace(c.Media.PixabayBaseURL), "/")
	if c.Media.PixabayBaseURL == "" {
		c.Media.PixabayBaseURL = defaultPixabayBaseURL
	}
	if c.Media.ClipsPerQuery <= 0 {
		c.Media.ClipsPerQuery = defaultClipsPerQuery
	}
	if c.Media.TimeoutSeconds <= 0 {
		c.Media.TimeoutSeconds = defaultMediaTimeout
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperXModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultTranscriptionLang
	}
}

func (c *Config) normalizeComposition() {
	c.Composition.FFmpegBinary = strings.TrimSpace(c.Composition.FFmpegBinary)
	if c.Composition.FFmpegBinary == "" {
		c.Composition.FFmpegBinary = defaultFFmpegBinary
	}
	c.Composition.FFprobeBinary = strings.TrimSpace(c.Composition.FFprobeBinary)
	if c.Composition.FFprobeBinary == "" {
		c.Composition.FFprobeBinary = defaultFFprobeBinary
	}
	c.Composition.FontName = strings.TrimSpace(c.Composition.FontName)
	if c.Composition.FontName == "" {
		c.Composition.FontName = defaultSubtitleFont
	}
}

func (c *Config) normalizePublish() {
	lookup := func(current *string, env string) {
		*current = strings.TrimSpace(*current)
		if *current != "" {
			return
		}
		if value, ok := os.LookupEnv(env); ok {
			*current = strings.TrimSpace(value)
		}
	}
	lookup(&c.Publish.ClientID, "YOUTUBE_CLIENT_ID")
	lookup(&c.Publish.ClientSecret, "YOUTUBE_CLIENT_SECRET")
	lookup(&c.Publish.RefreshToken, "YOUTUBE_REFRESH_TOKEN")

	c.Publish.CategoryID = strings.TrimSpace(c.Publish.CategoryID)
	if c.Publish.CategoryID == "" {
		c.Publish.CategoryID = defaultPublishCategoryID
	}
	c.Publish.PrivacyStatus = strings.ToLower(strings.TrimSpace(c.Publish.PrivacyStatus))
	if c.Publish.PrivacyStatus == "" {
		c.Publish.PrivacyStatus = defaultPublishPrivacy
	}
	c.Publish.DefaultLanguage = strings.TrimSpace(c.Publish.DefaultLanguage)
	if c.Publish.DefaultLanguage == "" {
		c.Publish.DefaultLanguage = defaultPublishLanguage
	}
}

func (c *Config) normalizeRetry() {
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = defaultRetryMaxAttempts
	}
	if c.Retry.BaseDelayMillis < 0 {
		c.Retry.BaseDelayMillis = defaultRetryBaseDelayMS
	}
	if c.Retry.AttemptTimeoutSeconds < 0 {
		c.Retry.AttemptTimeoutSeconds = 0
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollIntervalSeconds <= 0 {
		c.Workflow.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Workflow.MaxConcurrentJobs <= 0 {
		c.Workflow.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
	if c.Workflow.JobTimeoutMinutes < 0 {
		c.Workflow.JobTimeoutMinutes = 0
	}
}

func (c *Config) normalizeAPI() {
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		c.API.Token = strings.TrimSpace(os.Getenv("PROMPTREEL_API_TOKEN"))
	}
	origins := make([]string, 0, len(c.API.AllowedOrigins))
	for _, origin := range c.API.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	c.API.AllowedOrigins = origins
	if c.API.DefaultLimit <= 0 {
		c.API.DefaultLimit = defaultAPIListLimit
	}
	if c.API.MaxLimit <= 0 {
		c.API.MaxLimit = defaultAPIMaxListLimit
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = strings.TrimSpace(os.Getenv("NTFY_TOPIC"))
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text", "pretty":
		format = "console"
	case "json":
	default:
		// Validate reports the unsupported value.
	}
	c.Logging.Format = format

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
