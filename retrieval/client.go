package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of retry attempts.
const DefaultMaxRetries = 3

// DefaultRetryWait is the default initial wait between retries.
const DefaultRetryWait = 1 * time.Second

// client provides common HTTP functionality for provider clients.
// Database APIs here are read-only, so only GET is supported.
type client struct {
	client     *http.Client
	baseURL    string
	database   string
	mailto     string
	maxRetries int
	retryWait  time.Duration
}

// clientConfig holds configuration for client.
type clientConfig struct {
	Client     *http.Client
	BaseURL    string
	Database   string
	Mailto     string
	MaxRetries int
	RetryWait  time.Duration
}

func newClient(cfg clientConfig) *client {
	c := &client{
		client:     cfg.Client,
		baseURL:    cfg.BaseURL,
		database:   cfg.Database,
		mailto:     cfg.Mailto,
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}
	if c.retryWait <= 0 {
		c.retryWait = DefaultRetryWait
	}

	return c
}

// get executes a GET request with retries for transient errors and
// returns the raw response body.
func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range c.maxRetries {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if c.mailto != "" {
			// Polite-pool convention shared by OpenAlex and CrossRef.
			req.Header.Set("User-Agent", "slrflow (mailto:"+c.mailto+")")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries-1 {
				if err := c.wait(ctx, c.retryWait*time.Duration(1<<attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("%s request failed: %w", c.database, err)
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries-1 {
			wait := c.retryWaitFor(resp, attempt)
			resp.Body.Close()
			if err := c.wait(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			return nil, &APIError{
				Database:   c.database,
				StatusCode: resp.StatusCode,
				Endpoint:   path,
				Message:    errorMessage(body, resp.StatusCode),
			}
		}
		if readErr != nil {
			return nil, fmt.Errorf("read %s response: %w", c.database, readErr)
		}

		return body, nil
	}

	return nil, lastErr
}

// getJSON executes a GET request and decodes the JSON response into result.
func (c *client) getJSON(ctx context.Context, path string, params url.Values, result any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s response: %w", c.database, err)
	}
	return nil
}

func (c *client) wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryWaitFor honors the Retry-After header when present, otherwise
// falls back to exponential backoff.
func (c *client) retryWaitFor(resp *http.Response, attempt int) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return c.retryWait * time.Duration(1<<attempt)
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte, statusCode int) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return http.StatusText(statusCode)
}
