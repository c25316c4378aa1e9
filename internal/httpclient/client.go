// Package httpclient performs JSON GET requests against market and news providers.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// StatusError is returned for non-2xx responses. It unwraps to domain.ErrUpstream.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrUpstream
}

// Client issues single-attempt GET requests. Retries belong to the caller.
type Client struct {
	provider string
	http     *http.Client
	headers  map[string]string
}

// Option configures Client.
type Option func(*Client)

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// New creates a client labelled provider in metrics and errors.
func New(provider string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
		headers:  map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches url and decodes the body into out. endpoint labels the latency metric.
func (c *Client) GetJSON(ctx context.Context, endpoint, url string, out interface{}) error {
	start := time.Now()
	defer func() {
		observability.RecordUpstreamLatency(c.provider, endpoint, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s: %w: %w", c.provider, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", c.provider, domain.ErrUpstream, err)
	}
	return nil
}

// Retryable reports whether a GetJSON error is worth another attempt:
// transport failures, 429 and 5xx. Other 4xx responses and permanent kinds are final.
func Retryable(err error) bool {
	if err == nil || domain.IsPermanent(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return true
}
