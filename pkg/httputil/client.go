package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/newsalpha/backend/pkg/config"
	"github.com/wonny/newsalpha/backend/pkg/logger"
	"github.com/wonny/newsalpha/backend/pkg/redis"
)

// DefaultUserAgent is sent when the caller does not override it.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Client is an HTTP client wrapper with pacing and logging. All outbound
// requests go through it. A failed request is reported once; callers decide
// whether to move on.
type Client struct {
	httpClient   *http.Client
	logger       *logger.Logger
	pacer        *rate.Limiter
	rateLimiter  *redis.RateLimiter
	rateLimitCfg *redis.RateLimitConfig
	userAgent    string
}

// New creates a client with the configured timeout.
func New(cfg *config.Config, log *logger.Logger) *Client {
	timeout := cfg.Ingest.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:    log,
		userAgent: DefaultUserAgent,
	}
}

// WithPacing spaces consecutive requests at least interval apart. The first
// request goes out immediately.
func (c *Client) WithPacing(interval time.Duration) *Client {
	if interval <= 0 {
		c.pacer = nil
		return c
	}
	c.pacer = rate.NewLimiter(rate.Every(interval), 1)
	return c
}

// WithRateLimiter sets the shared Redis limiter for this client
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.rateLimiter = limiter
	c.rateLimitCfg = &cfg
	return c
}

// WithCookieJar keeps cookies between requests.
func (c *Client) WithCookieJar() *Client {
	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar
	return c
}

// WithUserAgent overrides the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// StdClient returns an *http.Client for SDKs that take one. Its requests
// wait on the same pacer and rate limiter as Do.
func (c *Client) StdClient() *http.Client {
	next := c.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   c.httpClient.Timeout,
		Jar:       c.httpClient.Jar,
		Transport: &pacedTransport{client: c, next: next},
	}
}

type pacedTransport struct {
	client *Client
	next   http.RoundTripper
}

func (t *pacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.client.wait(req.Context()); err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" && t.client.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.client.userAgent)
	}
	return t.next.RoundTrip(req)
}

// wait blocks until the pacer and the shared limiter both admit a request.
func (c *Client) wait(ctx context.Context) error {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("pacing wait failed: %w", err)
		}
	}

	if c.rateLimiter != nil && c.rateLimitCfg != nil {
		if err := c.rateLimiter.Wait(ctx, *c.rateLimitCfg); err != nil {
			return fmt.Errorf("rate limit wait failed: %w", err)
		}
	}
	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.Do(req)
}

// GetBody performs a GET request and returns the body of a 200 response.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Do executes req after pacing and rate limiting.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.wait(req.Context()); err != nil {
		return nil, err
	}

	if req.Header.Get("User-Agent") == "" && c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	startTime := time.Now()
	url := req.URL.String()

	c.logger.WithFields(map[string]any{
		"method": req.Method,
		"url":    url,
	}).Debug("HTTP request started")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]any{
			"method":   req.Method,
			"url":      url,
			"duration": duration,
			"error":    err.Error(),
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]any{
		"method":      req.Method,
		"url":         url,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// StatusError is returned by GetBody for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}
