package config

import "strconv"

// Configuration keys.
const (
	// KeyDataDir is the base directory for project artifacts and traces.
	KeyDataDir = "data_dir"
	// KeyMailto joins the polite pools of database APIs that support it.
	KeyMailto = "mailto"
	// KeyMaxResults caps per-database search results.
	KeyMaxResults = "max_results"
	// KeyModelTier selects the model tier for generation stages.
	KeyModelTier = "model_tier"
	// KeyWebhookURL is an optional generic notification webhook.
	KeyWebhookURL = "webhook_url"
	// KeySlackWebhook is an optional Slack notification webhook.
	KeySlackWebhook = "slack_webhook"
	// KeyLogLevel sets the slog level (debug, info, warn, error).
	KeyLogLevel = "log_level"
)

// Defaults returns the built-in default values.
func Defaults() map[string]string {
	return map[string]string{
		KeyDataDir:    ".slrflow",
		KeyMaxResults: "100",
		KeyModelTier:  "default",
		KeyLogLevel:   "info",
	}
}

// Settings is the typed view of a resolved configuration.
type Settings struct {
	DataDir      string
	Mailto       string
	MaxResults   int
	ModelTier    string
	WebhookURL   string
	SlackWebhook string
	LogLevel     string
}

// SettingsFrom builds typed settings from a resolved configuration.
// Unparseable numeric values fall back to the built-in default.
func SettingsFrom(resolved *Resolved) Settings {
	s := Settings{
		DataDir:      resolved.Get(KeyDataDir),
		Mailto:       resolved.Get(KeyMailto),
		ModelTier:    resolved.Get(KeyModelTier),
		WebhookURL:   resolved.Get(KeyWebhookURL),
		SlackWebhook: resolved.Get(KeySlackWebhook),
		LogLevel:     resolved.Get(KeyLogLevel),
	}

	s.MaxResults = 100
	if n, err := strconv.Atoi(resolved.Get(KeyMaxResults)); err == nil && n > 0 {
		s.MaxResults = n
	}

	return s
}
