package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

const (
	// APIPrefix is the path prefix of every admin endpoint.
	APIPrefix  = "/api/admin"
	statusPath = "/sync/status"

	defaultTimeout   = 30 * time.Second
	statusMaxTries   = 3
	maxErrorBodySize = 512
)

// Client talks to the PawsitiveCheck admin REST API.
type Client struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	statusTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithStatusTimeout bounds each status fetch attempt.
func WithStatusTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.statusTimeout = d
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
// Sync requests carry no transport timeout of their own; callers bound them through ctx.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{},
		statusTimeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sync issues exactly one POST to endpoint (e.g. "/sync/recalls") and decodes a SyncResult.
// It never retries.
func (c *Client) Sync(ctx context.Context, endpoint string) (*entities.SyncResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, endpoint)
	if err != nil {
		return nil, err
	}

	var result entities.SyncResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status fetches the sync status snapshot. Transient failures are retried with
// exponential backoff; anything else fails immediately.
func (c *Client) Status(ctx context.Context) (*entities.SyncStatus, error) {
	operation := func() (*entities.SyncStatus, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.statusTimeout)
		defer cancel()

		req, err := c.newRequest(reqCtx, http.MethodGet, statusPath)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		var status entities.SyncStatus
		if err := c.do(req, &status); err != nil {
			if isRetryableError(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return &status, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	status, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(statusMaxTries),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch sync status: %w", err)
	}
	return status, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+APIPrefix+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// isRetryableError treats transport failures, rate limits and 5xx answers as transient.
func isRetryableError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
