package function

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/brands-faas/internal/faas"
	"github.com/utafrali/brands-faas/pkg/httputil"
)

// options are shared by every function constructor in this package.
type options struct {
	now      func() time.Time
	maxLimit int
	logger   *slog.Logger
}

// Option configures a function.
type Option func(*options)

// WithClock overrides the clock used for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxLimit caps the page size of list requests. Zero leaves it unbounded.
func WithMaxLimit(n int) Option {
	return func(o *options) { o.maxLimit = n }
}

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// respond renders v. An encode failure becomes a 500 failure envelope.
func respond(now time.Time, status int, v any) faas.Result {
	res, err := faas.JSON(status, v)
	if err != nil {
		return failure(now, http.StatusInternalServerError, httputil.Fail(now, err.Error()))
	}
	return res
}

func failure(now time.Time, status int, f httputil.Failure) faas.Result {
	res, err := faas.JSON(status, f)
	if err != nil {
		// A Failure only holds strings, so this is unreachable in practice.
		body, _ := httputil.MarshalIndent(httputil.Fail(now, "an internal error occurred"))
		return faas.Result{StatusCode: http.StatusInternalServerError, Body: body, ContentType: faas.ContentTypeJSON}
	}
	return res
}
