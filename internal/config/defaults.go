package config

const (
	defaultConfigPath          = "~/.config/promptreel/config.toml"
	defaultDataDir             = "~/.local/share/promptreel"
	defaultWorkDir             = "~/.local/share/promptreel/work"
	defaultLogDir              = "~/.local/share/promptreel/logs"
	defaultBlobDir             = "~/.local/share/promptreel/artifacts"
	defaultAPIBind             = "127.0.0.1:7488"
	defaultStorageBackend      = "sqlite"
	defaultLLMProvider         = "openrouter"
	defaultOpenRouterURL       = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel     = "cognitivecomputations/dolphin3.0-r1-mistral-24b:free"
	defaultGeminiURL           = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel         = "gemini-2.5-flash-lite"
	defaultLLMReferer          = "https://github.com/promptreel/promptreel"
	defaultLLMTitle            = "promptreel"
	defaultLLMTimeoutSeconds   = 60
	defaultSpeechURL           = "https://api.openai.com/v1/audio/speech"
	defaultSpeechModel         = "tts-1"
	defaultSpeechVoice         = "en-US-AriaNeural"
	defaultSpeechTimeout       = 120
	defaultPixabayBaseURL      = "https://pixabay.com/api"
	defaultClipsPerQuery       = 3
	defaultMediaTimeout        = 120
	defaultWhisperXModel       = "large-v3"
	defaultTranscriptionLang   = "en"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultSubtitleFont        = "Arial"
	defaultPublishCategoryID   = "28"
	defaultPublishPrivacy      = "private"
	defaultPublishLanguage     = "en"
	defaultRetryMaxAttempts    = 5
	defaultRetryBaseDelayMS    = 1000
	defaultPollIntervalSeconds = 2
	defaultMaxConcurrentJobs   = 2
	defaultJobTimeoutMinutes   = 60
	defaultAPIListLimit        = 20
	defaultAPIMaxListLimit     = 200
	defaultNtfyTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
			BlobDir: defaultBlobDir,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultOpenRouterURL,
			Model:          defaultOpenRouterModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Speech: Speech{
			BaseURL:        defaultSpeechURL,
			Model:          defaultSpeechModel,
			Voice:          defaultSpeechVoice,
			TimeoutSeconds: defaultSpeechTimeout,
		},
		Media: Media{
			PixabayBaseURL: defaultPixabayBaseURL,
			ClipsPerQuery:  defaultClipsPerQuery,
			TimeoutSeconds: defaultMediaTimeout,
		},
		Transcription: Transcription{
			Model:    defaultWhisperXModel,
			Language: defaultTranscriptionLang,
		},
		Composition: Composition{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			FontName:      defaultSubtitleFont,
		},
		Publish: Publish{
			CategoryID:      defaultPublishCategoryID,
			PrivacyStatus:   defaultPublishPrivacy,
			DefaultLanguage: defaultPublishLanguage,
		},
		Retry: Retry{
			MaxAttempts:     defaultRetryMaxAttempts,
			BaseDelayMillis: defaultRetryBaseDelayMS,
		},
		Workflow: Workflow{
			PollIntervalSeconds: defaultPollIntervalSeconds,
			MaxConcurrentJobs:   defaultMaxConcurrentJobs,
			JobTimeoutMinutes:   defaultJobTimeoutMinutes,
		},
		API: API{
			DefaultLimit: defaultAPIListLimit,
			MaxLimit:     defaultAPIMaxListLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
