package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// RatingSummary is the remote API's aggregate rating shape.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Comment is one player comment as returned by the remote API.
type Comment struct {
	Author   string    `json:"author"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"posted_at"`
}

// Client talks to the remote ratings/comments JSON API. The credential is
// threaded in explicitly; the client never reads environment state.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Backoff    time.Duration // initial retry backoff, doubled per attempt
}

// NewClient returns a telemetry client for the given API base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Backoff: initialBackoff,
	}
}

// Ratings fetches the aggregate rating for a game.
func (c *Client) Ratings(ctx context.Context, gameID string) (*RatingSummary, error) {
	var summary RatingSummary
	if err := c.getJSON(ctx, fmt.Sprintf("games/%s/ratings", url.PathEscape(gameID)), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Comments fetches all comments for a game.
func (c *Client) Comments(ctx context.Context, gameID string) ([]Comment, error) {
	var comments []Comment
	if err := c.getJSON(ctx, fmt.Sprintf("games/%s/comments", url.PathEscape(gameID)), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// getJSON issues a GET against the API and decodes the JSON response,
// retrying transient failures with exponential backoff.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint, err := url.JoinPath(c.BaseURL, path)
	if err != nil {
		return fmt.Errorf("invalid telemetry URL: %w", err)
	}

	backoff := c.Backoff
	if backoff <= 0 {
		backoff = initialBackoff
	}
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("telemetry request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read telemetry response: %w", readErr)
			continue
		}

		if isRetryable(resp.StatusCode) {
			lastErr = fmt.Errorf("telemetry API returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telemetry API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode telemetry response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("telemetry request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func isRetryable(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
