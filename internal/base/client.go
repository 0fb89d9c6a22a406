// Package base provides the shared HTTP transport used to reach the Stash API.
package base

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/olgasafonova/stash-mcp-server/metrics"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// MaxConcurrentRequests limits parallel API calls
	MaxConcurrentRequests = 5

	// DefaultMaxRetry is the number of attempts made for retryable failures
	DefaultMaxRetry = 3

	// DefaultUserAgent is sent when a request does not set its own
	DefaultUserAgent = "stash-mcp-server/1.0"
)

// Client provides common HTTP client infrastructure with a concurrency
// semaphore, an optional request rate limit and retries.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Semaphore  chan struct{}
	Limiter    *rate.Limiter // nil means unlimited
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithTimeout replaces the HTTP client with one using the given timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.HTTPClient = newHTTPClient(d)
		}
	}
}

// WithMaxConcurrent sets the number of requests allowed in flight
func WithMaxConcurrent(n int) ClientOption {
	return func(client *Client) {
		if n > 0 {
			client.Semaphore = make(chan struct{}, n)
		}
	}
}

// WithRateLimit caps outbound requests per second. A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(client *Client) {
		if rps <= 0 {
			client.Limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		client.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases idle connections held by the client
func (c *Client) Close() {
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}

// AcquireSlot blocks until a request slot is available or context is canceled
func (c *Client) AcquireSlot(ctx context.Context) error {
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for request slot: %w", ctx.Err())
	}
}

// ReleaseSlot releases a request slot
func (c *Client) ReleaseSlot() {
	<-c.Semaphore
}

// wait blocks on the rate limiter, if one is configured
func (c *Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL       string
	Method    string // defaults to POST when Body is set, GET otherwise
	Body      []byte
	Headers   map[string]string
	UserAgent string
	MaxRetry  int    // defaults to DefaultMaxRetry
	Operation string // label for retry metrics
}

// DoRequest performs an HTTP request with concurrency limiting, rate limiting and retries.
// Network errors, 429 and 5xx responses are retried. Returns the response body and
// status code for any other response; the caller handles parsing.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	if err := c.AcquireSlot(ctx); err != nil {
		return nil, 0, err
	}
	defer c.ReleaseSlot()

	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetry
	}

	attempt := 0
	op := func() (response, error) {
		attempt++
		if err := c.wait(ctx); err != nil {
			return response{}, backoff.Permanent(err)
		}
		return c.try(ctx, cfg)
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&quadraticBackOff{}),
		backoff.WithMaxTries(uint(maxRetry)),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.StashAPIRetries.WithLabelValues(cfg.Operation).Inc()
			c.Logger.Warn("Stash request failed, retrying",
				"attempt", attempt,
				"operation", cfg.Operation,
				"next", next,
				"error", err)
		}),
	)
	if err != nil {
		return nil, 0, err
	}
	return res.body, res.status, nil
}

// response is a completed request that is not retried
type response struct {
	body   []byte
	status int
}

// try makes one attempt. Errors that must not be retried are wrapped with
// backoff.Permanent; a 429 carries the server-requested delay.
func (c *Client) try(ctx context.Context, cfg RequestConfig) (response, error) {
	req, err := c.newRequest(ctx, cfg)
	if err != nil {
		return response{}, backoff.Permanent(err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, backoff.Permanent(fmt.Errorf("request canceled: %w", ctx.Err()))
		}
		return response{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readAndClose(resp)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if wait := parseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
			return response{}, fmt.Errorf("rate limited (429): %w", &backoff.RetryAfterError{Duration: wait})
		}
		return response{}, fmt.Errorf("rate limited (429)")
	case resp.StatusCode >= 500:
		return response{}, fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return response{body: body, status: resp.StatusCode}, nil
}

// quadraticBackOff grows the pause between attempts: 100ms, 400ms, 900ms, ...
type quadraticBackOff struct {
	attempt int
}

func (b *quadraticBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt*b.attempt) * 100 * time.Millisecond
}

func (b *quadraticBackOff) Reset() {
	b.attempt = 0
}

// parseRetryAfter reads a delay in seconds; anything else yields zero
func parseRetryAfter(v string) time.Duration {
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (c *Client) newRequest(ctx context.Context, cfg RequestConfig) (*http.Request, error) {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
		if cfg.Body != nil {
			method = http.MethodPost
		}
	}

	var body io.Reader
	if cfg.Body != nil {
		body = bytes.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cfg.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
