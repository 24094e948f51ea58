package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
	"github.com/utafrali/brands-faas/pkg/logger"
	"github.com/utafrali/brands-faas/pkg/validator"
)

// ContentTypeJSON is the content type of every envelope.
const ContentTypeJSON = "application/json"

// TimestampLayout renders UTC instants with millisecond precision,
// e.g. 2025-01-02T15:04:05.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Envelope is the success wrapper returned by every function endpoint.
type Envelope struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Examples  any    `json:"examples,omitempty"`
}

// Failure is the error wrapper. Message carries optional human-readable detail.
type Failure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// Success builds a success envelope stamped with now.
func Success(now time.Time, data any) Envelope {
	return Envelope{Success: true, Timestamp: Timestamp(now), Data: data}
}

// Fail builds a failure envelope stamped with now.
func Fail(now time.Time, message string) Failure {
	return Failure{Success: false, Error: message, Timestamp: Timestamp(now)}
}

// MarshalIndent renders v as two-space indented JSON without a trailing
// newline. HTML characters are left unescaped ("Food & Beverage").
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON writes a JSON response with the given status code.
// Headers are already sent when encoding fails, so the error is dropped.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw writes a pre-rendered body. An empty contentType defaults to JSON.
func WriteRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = ContentTypeJSON
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes a failure envelope derived from err. Internal errors are
// logged and answered with a generic message. It prefers the request-scoped
// logger from context over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	resp := Fail(time.Now(), "an internal error occurred")
	resp.RequestID = logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != http.StatusInternalServerError {
		resp.Error = appErr.Message
		WriteJSON(w, appErr.Status, resp)
		return
	}

	status := apperrors.HTTPStatus(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		resp.Error = "resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		resp.Error = err.Error()
	case errors.Is(err, apperrors.ErrTooManyRequest):
		resp.Error = "too many requests"
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, resp)
}

// WriteValidationError writes a 400 failure envelope. Field-level messages from
// the validator package are joined into Message.
func WriteValidationError(w http.ResponseWriter, err error) {
	resp := Fail(time.Now(), "request validation failed")

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		resp.Message = valErr.Error()
	} else {
		resp.Error = err.Error()
	}

	WriteJSON(w, http.StatusBadRequest, resp)
}
