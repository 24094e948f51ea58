package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
)

// FailureBody mirrors the failure envelope written by the brands functions,
// {"success":false,"error":"...","message":"...","timestamp":"..."}, as well
// as the shim's bare {"error":"...","message":"..."} routing errors.
type FailureBody struct {
	Success   *bool  `json:"success,omitempty"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Detail joins Error and Message the way a CLI user wants to read them.
func (f FailureBody) Detail() string {
	if f.Message == "" {
		return f.Error
	}
	return f.Error + ": " + f.Message
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError when it carries a failure envelope. Anything else is
// reported with the status code and raw body.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, target string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", target, resp.StatusCode, err)
	}

	var body FailureBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Error != "" {
		return mapFailure(resp.StatusCode, body, target)
	}

	return fmt.Errorf("%s returned status %d: %s", target, resp.StatusCode, string(bodyBytes))
}

// mapFailure translates a status code and failure body into an AppError that
// keeps the sentinel semantics callers test with errors.Is.
func mapFailure(status int, body FailureBody, target string) error {
	msg := fmt.Sprintf("%s: %s", target, body.Detail())

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: msg,
			Status:  status,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	case status == http.StatusTooManyRequests:
		return &apperrors.AppError{
			Code:    "RATE_LIMITED",
			Message: msg,
			Status:  status,
			Err:     apperrors.ErrTooManyRequest,
		}
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(msg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", target, status, body.Detail())
	default:
		return &apperrors.AppError{
			Code:    http.StatusText(status),
			Message: msg,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
