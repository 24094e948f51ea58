package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/brands-faas/pkg/logger"
)

// RequestLogger hands each invocation a logger pre-tagged with its ids and
// span, reachable through logger.FromContext. It must run after
// RequestLogging and Tracing, which put those values in context.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, logger.WithContext(ctx, base))))
		})
	}
}
