// Package transport provides the HTTP/REST client used underneath the
// resilience layer. It wraps the resty library with connection pooling,
// rate limiting, and middleware support for observability.
//
// The transport never retries on its own: a failed request surfaces as an
// error for the classifier, and the retry executor decides whether to run
// the operation again. This keeps retrying in exactly one place.
//
// Example usage:
//
//	cfg := config.TransportConfig{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	}
//
//	client, err := transport.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Make a GET request
//	resp, err := client.Get(ctx, "/employees/123").Do()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Make a POST request with JSON body
//	emp := map[string]string{"name": "Dana"}
//	resp, err = client.Post(ctx, "/employees").WithJSON(emp).Do()
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/talentwave/resilience/pkg/config"
	"github.com/talentwave/resilience/pkg/errors"
)

// Client provides HTTP/REST client functionality with connection pooling,
// rate limiting, and middleware support.
type Client struct {
	resty   *resty.Client
	config  config.TransportConfig
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new HTTP client with the provided configuration.
// It initializes connection pooling and rate limiting (if configured).
func New(ctx context.Context, cfg config.TransportConfig) (*Client, error) {
	// Apply defaults
	cfg = applyDefaults(cfg)

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid transport config")
	}

	// Create resty client
	restyClient := resty.New()

	// Set base URL if provided
	if cfg.BaseURL != "" {
		restyClient.SetBaseURL(cfg.BaseURL)
	}

	// Set timeout
	restyClient.SetTimeout(cfg.Timeout)

	// Configure transport (connection pooling)
	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,
	}
	restyClient.SetTransport(transport)

	// Create rate limiter if configured
	var limiter *rate.Limiter
	if cfg.RateLimitPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
	}

	// Create client context
	clientCtx, cancel := context.WithCancel(ctx)

	return &Client{
		resty:   restyClient,
		config:  cfg,
		limiter: limiter,
		ctx:     clientCtx,
		cancel:  cancel,
	}, nil
}

// Get creates a new GET request for the specified URL.
// The URL can be relative (appended to BaseURL) or absolute.
func (c *Client) Get(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodGet).SetURL(url)
}

// Post creates a new POST request for the specified URL.
func (c *Client) Post(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodPost).SetURL(url)
}

// Put creates a new PUT request for the specified URL.
func (c *Client) Put(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodPut).SetURL(url)
}

// Patch creates a new PATCH request for the specified URL.
func (c *Client) Patch(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodPatch).SetURL(url)
}

// Delete creates a new DELETE request for the specified URL.
func (c *Client) Delete(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodDelete).SetURL(url)
}

// Head creates a new HEAD request for the specified URL.
func (c *Client) Head(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodHead).SetURL(url)
}

// Options creates a new OPTIONS request for the specified URL.
func (c *Client) Options(ctx context.Context, url string) *Request {
	return c.NewRequest(ctx).SetMethod(http.MethodOptions).SetURL(url)
}

// NewRequest creates a new request with the client's configuration.
func (c *Client) NewRequest(ctx context.Context) *Request {
	return &Request{
		client: c,
		resty:  c.resty.R(),
		ctx:    ctx,
	}
}

// Close releases all resources associated with the client.
func (c *Client) Close() error {
	c.cancel()
	c.resty.Close()
	return nil
}

// checkRateLimit enforces rate limiting before making a request.
// It blocks until a token is available or the context is canceled.
func (c *Client) checkRateLimit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit wait failed")
	}

	return nil
}

// applyDefaults applies default values to unset configuration fields.
func applyDefaults(cfg config.TransportConfig) config.TransportConfig {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimitBurst == 0 && cfg.RateLimitPerSecond > 0 {
		cfg.RateLimitBurst = 1
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = 10 * time.Second
	}
	if cfg.ExpectContinueTimeout == 0 {
		cfg.ExpectContinueTimeout = 1 * time.Second
	}
	return cfg
}

// validateConfig validates the transport configuration.
func validateConfig(cfg config.TransportConfig) error {
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got: %v", cfg.Timeout)
	}
	if cfg.RateLimitPerSecond < 0 {
		return fmt.Errorf("rate_limit_per_second must be non-negative, got: %f", cfg.RateLimitPerSecond)
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate_limit_burst must be non-negative, got: %d", cfg.RateLimitBurst)
	}
	if cfg.MaxIdleConns < 0 {
		return fmt.Errorf("max_idle_conns must be non-negative, got: %d", cfg.MaxIdleConns)
	}
	return nil
}
