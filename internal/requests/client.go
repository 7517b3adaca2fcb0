package requests

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/steviee/go-northstar/internal/cache"
)

const (
	// DefaultTimeout is the default HTTP client timeout for text resources.
	DefaultTimeout = 30 * time.Second

	// DefaultScheme is used to build request URLs from a host and a path.
	DefaultScheme = "https"
)

// Version is reported in the User-Agent header. It is overwritten at
// start-up with the build version.
var Version = "dev"

// UserAgent returns the client-identifying User-Agent header value.
func UserAgent() string {
	return "go-northstar/" + Version
}

// Cache is the subset of the request cache the client needs.
type Cache interface {
	Get(key string, maxAge time.Duration) (string, bool)
	Set(key, data string) error
}

// Client fetches remote text resources through the request cache.
type Client struct {
	httpClient *http.Client
	scheme     string
	userAgent  string
	cache      Cache

	pending sync.WaitGroup
}

// Config holds client configuration.
type Config struct {
	// HTTPClient overrides the transport. Tests hand in an httptest client.
	HTTPClient *http.Client
	Timeout    time.Duration
	Scheme     string
	UserAgent  string
	// Cache may be nil, in which case nothing is cached.
	Cache Cache
}

// Request describes one GET.
type Request struct {
	Host string
	Path string

	// CacheKey enables the cache for this request when non-empty.
	CacheKey string

	// MaxAge bounds how old a cached payload may be. Zero means
	// cache.DefaultMaxAge.
	MaxAge time.Duration

	// IgnoreAge serves a cached payload of any age and overrides MaxAge.
	IgnoreAge bool

	// NoOfflineFallback disables serving a stale cached payload when the
	// network request fails.
	NoOfflineFallback bool
}

// NewClient creates a new client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.Scheme == "" {
		config.Scheme = DefaultScheme
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	slog.Debug("creating request client",
		"scheme", config.Scheme,
		"timeout", httpClient.Timeout,
		"cache_enabled", config.Cache != nil)

	return &Client{
		httpClient: httpClient,
		scheme:     config.Scheme,
		userAgent:  config.UserAgent,
		cache:      config.Cache,
	}
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// URL builds the absolute URL for host and path.
func (c *Client) URL(host, path string) string {
	return fmt.Sprintf("%s://%s%s", c.scheme, host, path)
}

// Get returns the body of GET <scheme>://<host><path>.
//
// With a cache key, a fresh cached payload is returned without touching the
// network, and every completed response, whatever its status, is written
// back to the cache in the background. When the request fails at the transport level, a cached
// payload of any age is returned unless NoOfflineFallback is set. Otherwise
// the error wraps ErrTransport.
func (c *Client) Get(ctx context.Context, req Request) (string, error) {
	maxAge := req.MaxAge
	switch {
	case req.IgnoreAge:
		maxAge = 0
	case maxAge <= 0:
		maxAge = cache.DefaultMaxAge
	}

	if req.CacheKey != "" && c.cache != nil {
		if data, ok := c.cache.Get(req.CacheKey, maxAge); ok {
			slog.Debug("request cache hit", "key", req.CacheKey)
			return data, nil
		}
	}

	url := c.URL(req.Host, req.Path)
	body, status, err := c.fetch(ctx, url)
	if err != nil {
		if !req.NoOfflineFallback && req.CacheKey != "" && c.cache != nil {
			if data, ok := c.cache.Get(req.CacheKey, 0); ok {
				slog.Warn("request failed, serving cached copy",
					"url", url,
					"key", req.CacheKey,
					"error", err)
				return data, nil
			}
		}
		return "", fmt.Errorf("%w: GET %s: %v", ErrTransport, url, err)
	}

	if req.CacheKey != "" && c.cache != nil {
		if status < 200 || status > 299 {
			slog.Debug("caching unsuccessful response", "url", url, "status", status)
		}
		c.persist(req.CacheKey, body)
	}

	return body, nil
}

// Flush waits for background cache writes started by Get.
func (c *Client) Flush() {
	c.pending.Wait()
}

// persist writes body to the cache without blocking the caller.
func (c *Client) persist(key, body string) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := c.cache.Set(key, body); err != nil {
			slog.Warn("failed to cache response", "key", key, "error", err)
		}
	}()
}

// fetch performs a single GET and reads the whole body as text.
func (c *Client) fetch(ctx context.Context, url string) (string, int, error) {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return "", 0, err
	}

	slog.Debug("request", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read body: %w", err)
	}

	slog.Debug("response",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(data))

	return string(data), resp.StatusCode, nil
}

// newRequest creates a GET request carrying the launcher's User-Agent.
func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}
