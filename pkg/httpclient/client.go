package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/utafrali/brands-faas/pkg/logger"
)

// Config tunes the gateway HTTP client.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int
	UserAgent       string
}

// DefaultConfig returns the settings brands-cli uses against a gateway.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    time.Second,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
		UserAgent:       "brands-faas-client/1.0",
	}
}

// Client talks to an OpenFaaS gateway. It retries gateway faults, forwards
// trace context and the correlation id, and stamps a user agent.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New builds a Client with a pooled transport.
func New(cfg Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxConnsPerHost
	transport.MaxConnsPerHost = cfg.MaxConnsPerHost

	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// Do sends req and retries while the gateway answers with a fault (429 or a
// 5xx other than 501) or the connection fails. A 429 waits for Retry-After
// when the gateway sends one. A body is resent only if req.GetBody can
// rewind it; otherwise the first answer is returned.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	c.decorate(ctx, req)

	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req)
		last := attempt >= c.config.MaxRetries

		switch {
		case err != nil:
			if last || !isRetryableError(err) || !rewindable(req) {
				return nil, fmt.Errorf("gateway request failed after %d attempts: %w", attempt+1, err)
			}
		case !retryableStatus(resp.StatusCode) || last || !rewindable(req):
			return resp, nil
		}

		wait := c.backoff(attempt)
		if resp != nil {
			if after, ok := retryAfter(resp); ok {
				wait = min(after, c.config.RetryWaitMax)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if err := rewind(req); err != nil {
			return nil, err
		}
	}
}

// Get sends a GET to url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// decorate stamps outbound headers from ctx.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	if id := logger.CorrelationIDFromContext(ctx); id != "" && req.Header.Get("X-Correlation-ID") == "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

// backoff doubles RetryWaitMin per attempt up to RetryWaitMax, then spreads
// the result by up to a quarter either way.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.config.RetryWaitMin << min(attempt, 30)
	if wait > c.config.RetryWaitMax || wait <= 0 {
		wait = c.config.RetryWaitMax
	}
	return addJitter(wait)
}

func retryableStatus(status int) bool {
	return GatewayFault(status) && status != http.StatusNotImplemented
}

// retryAfter reads a delay-seconds Retry-After header from a 429.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusTooManyRequests {
		return 0, false
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func hasBody(req *http.Request) bool {
	return req.Body != nil && req.Body != http.NoBody
}

func rewindable(req *http.Request) bool {
	return !hasBody(req) || req.GetBody != nil
}

func rewind(req *http.Request) error {
	if !hasBody(req) {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewind request body: %w", err)
	}
	req.Body = body
	return nil
}

func addJitter(d time.Duration) time.Duration {
	quarter := int64(d) / 4
	if quarter <= 0 {
		return d
	}
	return d - time.Duration(quarter) + time.Duration(rand.Int64N(2*quarter+1))
}

// isRetryableError reports transport failures worth another attempt.
// A caller cancelling its own request is not one.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
