// Package appstore - HTTP transport
package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"appstore-pricing/internal/errors"
	"appstore-pricing/internal/logging"
)

// Config holds client configuration
type Config struct {
	// BaseURL is the API base URL
	BaseURL string

	// RequestTimeout bounds a single request
	RequestTimeout time.Duration

	// MaxRetries bounds retries of transient read failures
	MaxRetries int

	// RateLimitPerSecond caps the client-side request rate
	RateLimitPerSecond float64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://api.appstoreconnect.apple.com",
		RequestTimeout:     30 * time.Second,
		MaxRetries:         3,
		RateLimitPerSecond: 5,
	}
}

// Client is an authenticated App Store Connect API client
type Client struct {
	base       string
	http       *http.Client
	tokens     *TokenSource
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates a client over a token source
func NewClient(tokens *TokenSource, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = DefaultConfig().RateLimitPerSecond
	}

	return &Client{
		base:       cfg.BaseURL,
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), 1),
		maxRetries: cfg.MaxRetries,
	}
}

// get performs an authenticated GET with bounded retries on transient
// failures. url may be absolute (pagination links) or base-relative.
func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return err
			}
			logging.Debug("retrying request",
				zap.String("url", url), zap.Int("attempt", attempt))
		}

		err := c.do(ctx, http.MethodGet, url, nil, out)
		if err == nil {
			return nil
		}
		if !errors.IsType(err, errors.TypeTransient) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// post performs an authenticated POST. Writes are never retried: the batch
// update is atomic and a retry after an ambiguous failure could apply it
// twice.
func (c *Client) post(ctx context.Context, url string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, url, body, out)
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Transient("rate limiter interrupted", err)
	}

	if len(url) > 0 && url[0] == '/' {
		url = c.base + url
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.TypeInternal, "cannot encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "cannot build request", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Transient("request failed: "+method+" "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.TypeInternal, "cannot decode response", err)
	}
	return nil
}

// statusError maps an API failure status onto the error taxonomy
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := fmt.Sprintf("%s %s returned %d: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Authorization(msg, nil)
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.TypeUnknownItem, msg)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errors.Transient(msg, nil)
	default:
		return errors.New(errors.TypeInternal, msg)
	}
}

// sleepBackoff waits before retry attempt n with exponential backoff
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := time.Second << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Transient("cancelled while backing off", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// getAllPages follows links.next collecting every data item and included
// resource keyed by id
func (c *Client) getAllPages(ctx context.Context, url string) ([]resource, map[string]resource, error) {
	var all []resource
	included := make(map[string]resource)

	for url != "" {
		var p page
		if err := c.get(ctx, url, &p); err != nil {
			return nil, nil, err
		}
		all = append(all, p.Data...)
		for _, inc := range p.Included {
			included[inc.ID] = inc
		}
		url = p.Links.Next
	}
	return all, included, nil
}
