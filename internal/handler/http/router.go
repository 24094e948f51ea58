package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
	"github.com/utafrali/brands-faas/pkg/health"
	"github.com/utafrali/brands-faas/pkg/httputil"
	"github.com/utafrali/brands-faas/pkg/middleware"

	"github.com/utafrali/brands-faas/internal/config"
	"github.com/utafrali/brands-faas/internal/faas"
)

// APIPrefix is stripped before requests reach the brands function.
const APIPrefix = "/api"

// Functions are the handlers exposed by the server.
type Functions struct {
	// Brands is served under APIPrefix and under /function/<name>.
	Brands faas.Function
	// Info is served under /function/<name> only.
	Info faas.Function
}

// NewRouter creates a chi router that emulates an OpenFaaS gateway for the
// given functions. ctx bounds background work started by middleware.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	fns Functions,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.FunctionName))
	r.Use(middleware.Tracing(cfg.FunctionName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// Local server contract: /api/<path> reaches the brands function as <path>.
	r.Mount(APIPrefix, middleware.NoStore(faas.Adapter(fns.Brands, APIPrefix)))

	// Gateway contract: /function/<name>/<path>.
	for _, fn := range []faas.Function{fns.Brands, fns.Info} {
		if fn == nil {
			continue
		}
		prefix := "/function/" + fn.Name()
		r.Mount(prefix, middleware.NoStore(faas.Adapter(fn, prefix)))
	}

	static := middleware.CacheControl(middleware.OneYear)(NewStaticHandler(cfg.StaticDir, logger))
	for _, dir := range StaticPrefixes {
		r.Handle("/"+dir+"/*", static)
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, &apperrors.AppError{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "method not allowed",
			Status:  http.StatusMethodNotAllowed,
		}, logger)
	})

	return r
}

type notFoundBody struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, notFoundBody{
		Error:   "Not Found",
		Message: "API endpoints must start with /api/",
		AvailableEndpoints: []string{
			"GET /api/brands",
			"GET /api/brands/:id",
			"GET /api/categories",
			"GET /api/countries",
			"GET /api/header-menu",
		},
	})
}
