package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/brands-faas/pkg/logger"
)

const tracerName = "github.com/utafrali/brands-faas/pkg/middleware"

// Tracing starts one server span per function invocation, continuing any W3C
// trace context the gateway forwards. The span carries the FaaS attributes:
// the function name, an http trigger, the correlation id as invocation id and
// a coldstart flag on the first invocation this middleware serves.
//
// Mount it after RequestLogging so the correlation id is already in context.
func Tracing(functionName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	var warm atomic.Bool

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			prop := otel.GetTextMapPropagator()
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, functionName+" "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.FaaSName(functionName),
					semconv.FaaSTriggerHTTP,
					semconv.FaaSColdstart(!warm.Swap(true)),
					semconv.HTTPMethod(r.Method),
					semconv.HTTPTarget(r.URL.RequestURI()),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()
			if id := logger.CorrelationIDFromContext(ctx); id != "" {
				span.SetAttributes(semconv.FaaSInvocationID(id))
			}

			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			// chi resolves the pattern while routing, after the span started.
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				span.SetName(functionName + " " + r.Method + " " + rc.RoutePattern())
				span.SetAttributes(semconv.HTTPRoute(rc.RoutePattern()))
			}
			span.SetAttributes(semconv.HTTPStatusCode(rec.statusCode))
			if rec.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.statusCode))
			}
		})
	}
}
