package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker is open and no fallback is set.
var ErrCircuitOpen = gobreaker.ErrOpenState

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "brands_gateway_breaker_state",
		Help: "Gateway breaker state (0=closed, 1=half-open, 2=open).",
	}, []string{"breaker"})

	breakerFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brands_gateway_fallbacks_total",
		Help: "Gateway calls answered by the fallback because the breaker rejected them.",
	}, []string{"breaker"})
)

// BreakerConfig tunes the breaker guarding calls to the function gateway.
type BreakerConfig struct {
	Name string

	// ConsecutiveFailures opens the breaker after this many failed calls in a
	// row. Zero disables the rule.
	ConsecutiveFailures uint32

	// FailureRatio opens the breaker once MinRequests calls were counted in
	// the current Window and at least this share of them failed. Zero
	// disables the rule.
	FailureRatio float64
	MinRequests  uint32
	Window       time.Duration

	// Cooldown is how long the breaker stays open before TrialCalls calls
	// are let through.
	Cooldown   time.Duration
	TrialCalls uint32
}

// DefaultBreakerConfig opens after five straight gateway faults, or when half
// of at least ten calls in a minute fail, and retries after 30s.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		ConsecutiveFailures: 5,
		FailureRatio:        0.5,
		MinRequests:         10,
		Window:              time.Minute,
		Cooldown:            30 * time.Second,
		TrialCalls:          1,
	}
}

// ReadyToTrip reports whether counts should open the breaker.
func (c BreakerConfig) ReadyToTrip(counts gobreaker.Counts) bool {
	if c.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= c.ConsecutiveFailures {
		return true
	}
	if c.FailureRatio <= 0 || counts.Requests == 0 || counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

// GatewayFault reports whether status means the gateway or the function
// behind it is unhealthy. Other 4xx answers, such as an unknown brand id, are
// valid results and pass through.
func GatewayFault(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// countsAgainstGateway decides which call errors feed the breaker. A caller
// that cancels its own request says nothing about the gateway.
func countsAgainstGateway(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// FallbackFunc answers a request the breaker rejected.
type FallbackFunc func(ctx context.Context, req *http.Request, err error) (*http.Response, error)

// BreakerClient sends requests through Client behind a circuit breaker.
// Retries happen inside a single breaker call, so a request that exhausts
// them counts once.
type BreakerClient struct {
	name     string
	client   *Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	fallback FallbackFunc
	logger   *slog.Logger
}

// BreakerOption configures a BreakerClient.
type BreakerOption func(*BreakerClient)

// WithFallback answers rejected requests with fn instead of ErrCircuitOpen.
func WithFallback(fn FallbackFunc) BreakerOption {
	return func(b *BreakerClient) { b.fallback = fn }
}

// NewBreakerClient wraps client with a breaker configured by cfg.
func NewBreakerClient(client *Client, cfg BreakerConfig, logger *slog.Logger, opts ...BreakerOption) *BreakerClient {
	b := &BreakerClient{name: cfg.Name, client: client, logger: logger}
	for _, opt := range opts {
		opt(b)
	}

	b.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.TrialCalls,
		Interval:     cfg.Window,
		Timeout:      cfg.Cooldown,
		ReadyToTrip:  cfg.ReadyToTrip,
		IsSuccessful: func(err error) bool { return !countsAgainstGateway(err) },
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("gateway breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	breakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))

	return b
}

// Do sends req. Gateway faults come back as errors built from the failure
// envelope. While the breaker rejects calls, the fallback answers if one is
// set.
func (b *BreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := b.breaker.Execute(func() (*http.Response, error) {
		resp, err := b.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if GatewayFault(resp.StatusCode) {
			return nil, ParseResponseError(resp, b.name)
		}
		return resp, nil
	})

	rejected := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
	if rejected && b.fallback != nil {
		breakerFallbacks.WithLabelValues(b.name).Inc()
		b.logger.WarnContext(ctx, "gateway breaker rejected call, using fallback",
			slog.String("breaker", b.name),
			slog.String("path", req.URL.Path),
		)
		return b.fallback(ctx, req, err)
	}
	return resp, err
}

// Get sends a GET request to url.
func (b *BreakerClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return b.Do(ctx, req)
}

// State returns the breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.breaker.State()
}
