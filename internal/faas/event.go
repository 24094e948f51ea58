package faas

import "strings"

// Event is a single function invocation as seen by a handler. It mirrors the
// request object the OpenFaaS node templates pass to a function.
type Event struct {
	Method string `json:"method" validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	// Path is relative to the function mount point and always starts with "/".
	Path  string            `json:"path" validate:"required,startswith=/"`
	Query map[string]string `json:"query"`
	// Headers have lower-cased keys; repeated headers are joined with ", ".
	Headers map[string]string `json:"headers"`
	// Body is the decoded JSON payload, or {"raw": "<text>"} when the payload
	// is not JSON. It is an empty object when no body was sent.
	Body any `json:"body"`
}

// Header returns the header value for name, ignoring case.
func (e *Event) Header(name string) string {
	if e.Headers == nil {
		return ""
	}
	return e.Headers[strings.ToLower(name)]
}

// normalize fills the zero values a handler relies on.
func (e *Event) normalize() {
	if e.Method == "" {
		e.Method = "GET"
	}
	e.Method = strings.ToUpper(e.Method)
	if e.Path == "" {
		e.Path = "/"
	}
	if e.Query == nil {
		e.Query = map[string]string{}
	}
	if e.Headers == nil {
		e.Headers = map[string]string{}
	} else {
		lowered := make(map[string]string, len(e.Headers))
		for k, v := range e.Headers {
			lowered[strings.ToLower(k)] = v
		}
		e.Headers = lowered
	}
	if e.Body == nil {
		e.Body = map[string]any{}
	}
}
