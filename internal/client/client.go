package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/brands-faas/pkg/httpclient"

	"github.com/utafrali/brands-faas/internal/domain"
	"github.com/utafrali/brands-faas/internal/faas"
)

// DefaultBasePath is where the local server mounts the brands function.
const DefaultBasePath = "/api"

// BreakerName labels the gateway breaker in logs and metrics.
const BreakerName = "brands-gateway"

// HeaderFallback marks responses produced in-process while the breaker is open.
const HeaderFallback = "X-Brands-Fallback"

const maxResponseBytes = 4 << 20

// Response is a raw function response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	// Fallback is set when the response was produced in-process.
	Fallback bool
}

// Client talks to a running brands function through a retrying,
// circuit-broken HTTP client.
type Client struct {
	baseURL  string
	basePath string
	http     *httpclient.BreakerClient
	breaker  httpclient.BreakerConfig
	logger   *slog.Logger
	fallback faas.Function
}

// Option configures a Client.
type Option func(*Client)

// WithBasePath sets the mount point of the brands function, e.g.
// "/function/brands-list" when talking to an OpenFaaS gateway.
func WithBasePath(p string) Option {
	return func(c *Client) { c.basePath = "/" + strings.Trim(p, "/") }
}

// WithBreaker replaces the default gateway breaker settings.
func WithBreaker(cfg httpclient.BreakerConfig) Option {
	return func(c *Client) { c.breaker = cfg }
}

// WithFallback answers requests in-process with fn while the breaker is open.
func WithFallback(fn faas.Function) Option {
	return func(c *Client) { c.fallback = fn }
}

// New creates a client for the gateway at baseURL.
func New(baseURL string, cfg httpclient.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("gateway url must be absolute http(s), got %q", baseURL)
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(u.String(), "/"),
		basePath: DefaultBasePath,
		breaker:  httpclient.DefaultBreakerConfig(BreakerName),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	var breakerOpts []httpclient.BreakerOption
	if c.fallback != nil {
		breakerOpts = append(breakerOpts,
			httpclient.WithFallback(c.invokeLocally(strings.TrimSuffix(u.Path, "/")+c.basePath)))
	}
	c.http = httpclient.NewBreakerClient(httpclient.New(cfg), c.breaker, logger, breakerOpts...)

	return c, nil
}

// URL returns the absolute URL of path (relative to the function) with query.
func (c *Client) URL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + c.basePath + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// Call sends method to path and returns the response as is, including 4xx
// answers. Transport failures, gateway faults (429 and 5xx) and an open
// breaker without a fallback are returned as errors.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body []byte) (*Response, error) {
	var reader io.Reader = http.NoBody
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
		Fallback:    resp.Header.Get(HeaderFallback) != "",
	}, nil
}

// ListBrands fetches one page of brands. query takes the list parameters
// (category, country, search, sortBy, limit, offset).
func (c *Client) ListBrands(ctx context.Context, query url.Values) (*domain.BrandList, error) {
	var list domain.BrandList
	if err := c.getData(ctx, "/brands", query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetBrand fetches a single brand. An unknown id yields an error wrapping
// apperrors.ErrNotFound.
func (c *Client) GetBrand(ctx context.Context, id int) (domain.Brand, error) {
	var data struct {
		Brand domain.Brand `json:"brand"`
	}
	if err := c.getData(ctx, "/brands/"+strconv.Itoa(id), nil, &data); err != nil {
		return domain.Brand{}, err
	}
	return data.Brand, nil
}

// Categories fetches the distinct brand categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var data struct {
		Categories []string `json:"categories"`
	}
	if err := c.getData(ctx, "/categories", nil, &data); err != nil {
		return nil, err
	}
	return data.Categories, nil
}

// Countries fetches the distinct brand countries.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var data struct {
		Countries []string `json:"countries"`
	}
	if err := c.getData(ctx, "/countries", nil, &data); err != nil {
		return nil, err
	}
	return data.Countries, nil
}

// HeaderMenu fetches the site navigation.
func (c *Client) HeaderMenu(ctx context.Context) ([]domain.MenuItem, error) {
	var data struct {
		MenuItems []domain.MenuItem `json:"menuItems"`
	}
	if err := c.getData(ctx, "/header-menu", nil, &data); err != nil {
		return nil, err
	}
	return data.MenuItems, nil
}

// getData performs a GET and decodes the "data" member of a success
// envelope into out.
func (c *Client) getData(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.http.Get(ctx, c.URL(path, query))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "brands api")
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return fmt.Errorf("decode brands api response: %w", err)
	}
	if !env.Success || len(env.Data) == 0 {
		return fmt.Errorf("brands api returned no data for %s", path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode brands api data: %w", err)
	}
	return nil
}

// invokeLocally returns a breaker fallback that runs the function in-process
// on the request the breaker rejected.
func (c *Client) invokeLocally(stripPrefix string) httpclient.FallbackFunc {
	return func(ctx context.Context, req *http.Request, _ error) (*http.Response, error) {
		ev, err := faas.NewEvent(req, stripPrefix)
		if err != nil {
			return nil, fmt.Errorf("build local event: %w", err)
		}
		c.logger.DebugContext(ctx, "gateway unavailable, answering locally",
			slog.String("function", c.fallback.Name()),
			slog.String("path", ev.Path),
		)
		res := faas.Invoke(ctx, c.fallback, ev)

		ct := res.ContentType
		if ct == "" {
			ct = faas.ContentTypeJSON
		}
		header := http.Header{}
		header.Set("Content-Type", ct)
		header.Set(HeaderFallback, "local")

		return &http.Response{
			Status:        fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode)),
			StatusCode:    res.StatusCode,
			Header:        header,
			Body:          io.NopCloser(bytes.NewReader(res.Body)),
			ContentLength: int64(len(res.Body)),
			Request:       req,
		}, nil
	}
}
