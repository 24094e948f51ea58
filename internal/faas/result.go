package faas

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/utafrali/brands-faas/pkg/httputil"
)

// ContentTypeJSON is the default content type of a Result.
const ContentTypeJSON = httputil.ContentTypeJSON

// Result is what a function returns: a status code and a fully rendered body.
// The transport adapter is responsible for writing it out.
type Result struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// JSON renders v as two-space indented JSON.
func JSON(status int, v any) (Result, error) {
	body, err := httputil.MarshalIndent(v)
	if err != nil {
		return Result{}, fmt.Errorf("encode result: %w", err)
	}
	return Result{StatusCode: status, Body: body, ContentType: ContentTypeJSON}, nil
}

// errorResult is the bare {"error": "..."} body the shim answers with when
// the function itself cannot run.
func errorResult(status int, msg string) Result {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return Result{StatusCode: status, Body: body, ContentType: ContentTypeJSON}
}

// Write sends the result to w.
func (r Result) Write(w http.ResponseWriter) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	ct := r.ContentType
	if ct == "" {
		ct = ContentTypeJSON
	}
	w.Header().Set("Content-Type", ct)

	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(r.Body)
}
