package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// ErrRateLimited is returned when the outbound limiter cannot admit the
// request before the timeout expires.
var ErrRateLimited = errors.New("outbound rate limit")

// FetchError describes a failed outbound request. Status is zero for
// transport-level failures. Message is safe to show to end users; Err is the
// diagnostic and should only be logged.
type FetchError struct {
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage returns the user-facing text for the failure.
func (e *FetchError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Request failed. Please try again."
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RPS of 0 leaves outbound requests unlimited.
	RPS       float64
	Burst     int
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// Client performs single-attempt JSON GETs with a hard upper bound on the
// time spent per call and an opt-in per-host rate limit. It is safe for concurrent use.
type Client struct {
	client   *http.Client
	ua       string
	timeout  time.Duration
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "country-explorer/1.0"
	}
	limit := rate.Limit(opts.RPS)
	if opts.RPS <= 0 {
		limit = rate.Inf
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		client:   &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		ua:       opts.UserAgent,
		timeout:  opts.Timeout,
		limit:    limit,
		burst:    opts.Burst,
		limiters: map[string]*rate.Limiter{},
	}
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(c.limit, c.burst)
	c.limiters[host] = l
	return l
}

// NewRequest builds an HTTP GET request with context and a safe URL defaulting to https.
func NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if rawURL == "" {
		return nil, errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

// GetJSON issues exactly one GET and returns the response body. Any status
// >= 400 is reported as a *FetchError carrying that status; transport errors
// and timeouts are reported as a *FetchError with Status 0.
func (c *Client) GetJSON(ctx context.Context, rawURL string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := NewRequest(ctx, rawURL)
	if err != nil {
		return nil, 0, &FetchError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	if err := c.limiterFor(strings.ToLower(req.URL.Hostname())).Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, 0, &FetchError{Err: ctx.Err()}
		}
		return nil, 0, &FetchError{Err: fmt.Errorf("%w: %v", ErrRateLimited, err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return body, resp.StatusCode, &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return body, resp.StatusCode, nil
}
