package preflight

import (
	"strings"

	"promptreel/internal/config"
)

// CheckSpeechFromConfig evaluates text-to-speech settings.
func CheckSpeechFromConfig(cfg *config.Config) Result {
	const name = "Speech"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Speech.BaseURL) == "" {
		return Result{Name: name, Detail: "Missing base URL"}
	}
	if strings.TrimSpace(cfg.Speech.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Speech.BaseURL}
}

// CheckPublishFromConfig evaluates YouTube upload credentials.
func CheckPublishFromConfig(cfg *config.Config) Result {
	const name = "YouTube"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	var missing []string
	if strings.TrimSpace(cfg.Publish.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(cfg.Publish.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if strings.TrimSpace(cfg.Publish.RefreshToken) == "" {
		missing = append(missing, "refresh_token")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "Missing " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: "Uploads as " + cfg.Publish.PrivacyStatus}
}

// CheckNotificationsFromConfig reports whether ntfy delivery is configured.
// Notifications are optional, so a missing topic still passes.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if cfg.Notifications.NtfyTopic == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Notifications.NtfyTopic}
}
