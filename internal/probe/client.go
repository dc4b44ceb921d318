package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/config"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/resilience"
)

// DefaultUserAgent identifies probe requests when no override is set
const DefaultUserAgent = "URLOpenerShell-Probe/2.0"

// Client wraps resty with rate limiting, circuit breaker, and bounded
// redirect following. Responses are unparsed so callers control how
// much of the body is read.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewClient creates a probe HTTP client from configuration
func NewClient(cfg config.ProbeConfig) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = 10
	}

	// Retryable transport underneath resty
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryMax).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxHops)).
		SetDoNotParseResponse(true)

	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	// External sites vary in reliability; trip on sustained failure,
	// not a single bad host
	breaker := resilience.New("probe", resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: breaker,
	}
}

// Fetch issues a GET with rate limiting and circuit breaker protection.
// The returned response body is unread; the caller owns closing it.
func (c *Client) Fetch(ctx context.Context, url string) (*resty.Response, error) {
	// Fast reject while the breaker is open
	if c.breaker.State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.resty.R().SetContext(ctx).Get(url)
	})
	if err != nil {
		return nil, err
	}
	return result.(*resty.Response), nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// BreakerCounts returns circuit breaker statistics
func (c *Client) BreakerCounts() resilience.Counts {
	return c.breaker.Counts()
}

// FinalURL returns the URL that produced the final response after
// server-side redirects
func FinalURL(resp *resty.Response) string {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Request == nil {
		return ""
	}
	return resp.RawResponse.Request.URL.String()
}

// Hops counts the server-side redirects behind a response by walking
// the request chain net/http leaves on redirected responses
func Hops(resp *resty.Response) int {
	if resp == nil || resp.RawResponse == nil {
		return 0
	}
	hops := 0
	req := resp.RawResponse.Request
	for req != nil && req.Response != nil {
		hops++
		req = req.Response.Request
	}
	return hops
}
