// Package lookup talks to the public Polish legal databases: the Sejm ELI
// API for statutes (ISAP) and SAOS for court judgments.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable reports a transport failure, timeout, throttling or 5xx
	ErrUnavailable = errors.New("legal database unavailable")
	// ErrNotFound reports an unknown external identifier
	ErrNotFound = errors.New("not found in legal database")
)

// Result is one search hit from an external database
type Result struct {
	ExternalID string            `json:"external_id"`
	Title      string            `json:"title"`
	Text       string            `json:"text,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Searcher finds records matching a free-text query
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

const (
	defaultTimeout   = 30 * time.Second
	defaultRate      = 2.0
	defaultBurst     = 2
	defaultLimit     = 10
	maxErrorBodySize = 512
)

// Option configures an external database client
type Option func(*client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.http = hc
	}
}

// WithTimeout bounds each request
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit throttles outgoing requests; rps <= 0 disables throttling
func WithRateLimit(rps float64, burst int) Option {
	return func(c *client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// client is the HTTP plumbing shared by the ISAP and SAOS clients
type client struct {
	name    string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newClient(name, baseURL string, opts ...Option) *client {
	c := &client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRate), defaultBurst),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get fetches baseURL+path and returns the body of a 200 response
func (c *client) get(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read response: %v", ErrUnavailable, c.name, err)
	}
	c.logger.Debug("external request", "service", c.name, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.name, path)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, c.name, resp.StatusCode)
	default:
		if len(body) > maxErrorBodySize {
			body = body[:maxErrorBodySize]
		}
		return nil, fmt.Errorf("%s returned %d: %s", c.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}
