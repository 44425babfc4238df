package retrieval

import (
	"context"
	"net/http"
	"time"
)

// Provider executes queries against one bibliographic database.
type Provider interface {
	// Name is the canonical lowercase database identifier.
	Name() string

	// Search runs a query and returns up to limit normalized documents.
	Search(ctx context.Context, query string, limit int) ([]Document, error)
}

// ProviderConfig holds shared settings for the built-in providers.
type ProviderConfig struct {
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client

	// BaseURL overrides the production API endpoint, mainly for tests.
	BaseURL string

	// Mailto joins the polite pools of APIs that support it.
	Mailto string

	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int

	// RetryWait is the initial backoff between retries.
	RetryWait time.Duration
}

func (cfg ProviderConfig) client(database, defaultBaseURL string) *client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return newClient(clientConfig{
		Client:     cfg.HTTPClient,
		BaseURL:    baseURL,
		Database:   database,
		Mailto:     cfg.Mailto,
		MaxRetries: cfg.MaxRetries,
		RetryWait:  cfg.RetryWait,
	})
}

// DefaultProviders returns every built-in provider with one shared
// configuration.
func DefaultProviders(cfg ProviderConfig) []Provider {
	return []Provider{
		NewOpenAlexProvider(cfg),
		NewArxivProvider(cfg),
		NewCrossRefProvider(cfg),
		NewSemanticScholarProvider(cfg),
	}
}
