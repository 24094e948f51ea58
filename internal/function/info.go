package function

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/utafrali/brands-faas/pkg/httputil"

	"github.com/utafrali/brands-faas/internal/faas"
)

// InfoName is the deployed name of the diagnostic function.
const InfoName = "get-info"

// Info echoes the request back together with runtime details. It is meant
// for checking that a gateway routes and forwards requests correctly.
type Info struct {
	started time.Time
	opts    options
}

// NewInfo creates the diagnostic function. Uptime is measured from now.
func NewInfo(opts ...Option) *Info {
	o := newOptions(opts)
	return &Info{started: o.now(), opts: o}
}

func (i *Info) Name() string { return InfoName }

type serverInfo struct {
	Function  string  `json:"function"`
	Runtime   string  `json:"runtime"`
	Platform  string  `json:"platform"`
	GoVersion string  `json:"goVersion"`
	Uptime    float64 `json:"uptime"`
}

type requestHeaders struct {
	ContentType string `json:"contentType,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	Host        string `json:"host,omitempty"`
}

type requestInfo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   map[string]string `json:"query"`
	Headers requestHeaders    `json:"headers"`
}

type infoExamples struct {
	WithQuery   string `json:"withQuery"`
	Description string `json:"description"`
}

type infoResponse struct {
	Status          string            `json:"status"`
	Timestamp       string            `json:"timestamp"`
	Method          string            `json:"method"`
	Path            string            `json:"path"`
	Message         string            `json:"message"`
	Server          serverInfo        `json:"server"`
	Request         requestInfo       `json:"request"`
	Examples        infoExamples      `json:"examples"`
	QueryParams     map[string]string `json:"queryParams,omitempty"`
	PersonalMessage string            `json:"personalMessage,omitempty"`
}

func (i *Info) Handle(_ context.Context, ev *faas.Event) faas.Result {
	now := i.opts.now()

	query := ev.Query
	if query == nil {
		query = map[string]string{}
	}

	resp := infoResponse{
		Status:    "success",
		Timestamp: httputil.Timestamp(now),
		Method:    ev.Method,
		Path:      ev.Path,
		Message:   "OpenFaaS GET function is working!",
		Server: serverInfo{
			Function:  InfoName,
			Runtime:   "Go",
			Platform:  runtime.GOOS,
			GoVersion: runtime.Version(),
			Uptime:    now.Sub(i.started).Seconds(),
		},
		Request: requestInfo{
			Method: ev.Method,
			Path:   ev.Path,
			Query:  query,
			Headers: requestHeaders{
				ContentType: ev.Header("content-type"),
				UserAgent:   ev.Header("user-agent"),
				Host:        ev.Header("host"),
			},
		},
		Examples: infoExamples{
			WithQuery:   "?name=Alice&greeting=Hello",
			Description: "Add query parameters to see them in the response",
		},
	}
	if resp.Request.Path == "" {
		resp.Request.Path = "/"
	}

	if len(query) > 0 {
		resp.QueryParams = query
		if name := query["name"]; name != "" {
			resp.PersonalMessage = fmt.Sprintf("Hello, %s!", name)
		}
	}

	return respond(now, http.StatusOK, resp)
}
