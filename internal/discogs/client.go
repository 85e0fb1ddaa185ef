package discogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/franz/discogs-tagger/internal/util"
)

const (
	// BaseURL is the Discogs API base URL
	BaseURL = "https://api.discogs.com"

	// WebURL is the public site used for release and master links
	WebURL = "https://www.discogs.com"

	// UserAgent identifies this application to Discogs.
	// Discogs rejects requests without a descriptive user agent.
	UserAgent = "DiscogsTagger/2.0 (https://github.com/franz/discogs-tagger)"

	// DefaultRateLimit keeps unauthenticated clients below 25 requests per minute
	DefaultRateLimit = 2500 * time.Millisecond
)

// Config holds client configuration
type Config struct {
	BaseURL   string
	UserAgent string
	Token     string // personal access token, optional
	Timeout   time.Duration
	RateLimit time.Duration // minimum interval between requests
	Burst     int
	Retry     *util.RetryConfig
}

// DefaultConfig returns sensible defaults for the Discogs client
func DefaultConfig() Config {
	return Config{
		BaseURL:   BaseURL,
		UserAgent: UserAgent,
		Timeout:   30 * time.Second,
		RateLimit: DefaultRateLimit,
		Burst:     1,
		Retry:     util.CatalogRetryConfig(),
	}
}

// HTTPError is a non-200 response from the catalog
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("discogs: unexpected status %d for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("discogs: unexpected status %d for %s", e.StatusCode, e.URL)
}

// Temporary reports whether the request may succeed when repeated
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client fetches release snapshots and images from Discogs
type Client struct {
	httpClient *http.Client
	config     Config
	limiter    *rate.Limiter
}

// NewClient creates a new Discogs API client
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.Retry == nil {
		cfg.Retry = def.Retry
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
	}
}

// GetRelease fetches release id and returns the decoded snapshot together
// with the raw payload (for caching).
func (c *Client) GetRelease(ctx context.Context, id int) (*Release, []byte, error) {
	if id <= 0 {
		return nil, nil, fmt.Errorf("invalid release id %d", id)
	}

	url := fmt.Sprintf("%s/releases/%d", strings.TrimRight(c.config.BaseURL, "/"), id)
	util.DebugLog("Discogs API: fetching release %d", id)

	body, err := util.RetryWithBackoff(ctx, c.config.Retry, func() ([]byte, error) {
		return c.get(ctx, url, "application/json")
	}, fmt.Sprintf("GET release %d", id))
	if err != nil {
		return nil, nil, err
	}

	rel, err := DecodeRelease(body)
	if err != nil {
		return nil, nil, err
	}

	util.DebugLog("Discogs: retrieved '%s' (%d tracklist entries)", rel.Title, len(rel.Tracklist))
	return rel, body, nil
}

// FetchImage downloads an image referenced by a release
func (c *Client) FetchImage(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("image uri cannot be empty")
	}
	return util.RetryWithBackoff(ctx, c.config.Retry, func() ([]byte, error) {
		return c.get(ctx, uri, "image/*")
	}, "GET image")
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", accept)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, util.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// ReleaseURL returns the public page of a release
func ReleaseURL(id int) string {
	return fmt.Sprintf("%s/release/%d", WebURL, id)
}

// MasterURL returns the public page of a master release
func MasterURL(id int) string {
	return fmt.Sprintf("%s/master/%d", WebURL, id)
}
