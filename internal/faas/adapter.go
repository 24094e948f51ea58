package faas

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/brands-faas/pkg/httputil"
	"github.com/utafrali/brands-faas/pkg/logger"
	"github.com/utafrali/brands-faas/pkg/validator"
)

// MaxBodyBytes caps the request payload handed to a function.
const MaxBodyBytes = 1 << 20

// Adapter exposes fn over HTTP. stripPrefix is removed from the request path
// so the function sees paths relative to its mount point.
func Adapter(fn Function, stripPrefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ev, err := NewEvent(r, stripPrefix)
		if err != nil {
			var (
				tooLarge *http.MaxBytesError
				invalid  *validator.ValidationError
			)
			switch {
			case errors.As(err, &invalid):
				httputil.WriteValidationError(w, err)
			case errors.As(err, &tooLarge):
				errorResult(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			default:
				errorResult(http.StatusBadRequest, err.Error()).Write(w)
			}
			logger.FromContext(r.Context()).WarnContext(r.Context(), "rejected function request",
				slog.String("function", fn.Name()),
				slog.String("error", err.Error()),
			)
			return
		}

		Invoke(r.Context(), fn, ev).Write(w)
	})
}

// NewEvent converts an HTTP request into an Event. The body is limited to
// MaxBodyBytes.
func NewEvent(r *http.Request, stripPrefix string) (*Event, error) {
	path := strings.TrimPrefix(r.URL.Path, stripPrefix)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			query[k] = vs[len(vs)-1]
		}
	}

	headers := make(map[string]string, len(r.Header)+1)
	for k, vs := range r.Header {
		headers[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	if r.Host != "" {
		headers["host"] = r.Host
	}

	var body any = map[string]any{}
	if r.Body != nil {
		raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				body = map[string]any{"raw": string(raw)}
			}
		}
	}

	ev := &Event{
		Method:  r.Method,
		Path:    path,
		Query:   query,
		Headers: headers,
		Body:    body,
	}
	if err := validator.Validate(ev); err != nil {
		return nil, err
	}
	return ev, nil
}
