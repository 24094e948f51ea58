package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brands-faas/pkg/httpclient"

	"github.com/utafrali/brands-faas/internal/catalog"
	"github.com/utafrali/brands-faas/internal/client"
	"github.com/utafrali/brands-faas/internal/faas"
	"github.com/utafrali/brands-faas/internal/function"
	"github.com/utafrali/brands-faas/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func functions() []faas.Function {
	svc := service.NewBrandService(catalog.Default(), nil, discardLogger())
	return []faas.Function{
		function.NewBrands(svc, function.WithLogger(discardLogger())),
		function.NewInfo(function.WithLogger(discardLogger())),
	}
}

// ---------------------------------------------------------------------------
// ParseLine
// ---------------------------------------------------------------------------

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		method string
		path   string
		query  map[string]string
	}{
		{"bare path", "/brands", http.MethodGet, "/brands", map[string]string{}},
		{"missing slash", "categories", http.MethodGet, "/categories", map[string]string{}},
		{"query", "/brands?category=Technology&limit=1", http.MethodGet, "/brands",
			map[string]string{"category": "Technology", "limit": "1"}},
		{"last value wins", "/brands?limit=1&limit=2", http.MethodGet, "/brands", map[string]string{"limit": "2"}},
		{"explicit method", "post /", http.MethodPost, "/", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.method, ev.Method)
			assert.Equal(t, tt.path, ev.Path)
			assert.Equal(t, tt.query, ev.Query)
		})
	}
}

func TestParseLine_JSONEvent(t *testing.T) {
	ev, err := ParseLine(`{"method":"GET","path":"/brands/3","query":{"x":"1"}}`)

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, ev.Method)
	assert.Equal(t, "/brands/3", ev.Path)
	assert.Equal(t, "1", ev.Query["x"])
}

func TestParseLine_JSONBody(t *testing.T) {
	ev, err := ParseLine(`{"message":"hi"}`)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, ev.Method)
	assert.Equal(t, "/", ev.Path)
	assert.Equal(t, map[string]any{"message": "hi"}, ev.Body)
	assert.Equal(t, "application/json", ev.Header("Content-Type"))
}

func TestParseLine_InvalidJSON(t *testing.T) {
	_, err := ParseLine(`{"message":`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

// ---------------------------------------------------------------------------
// REPL
// ---------------------------------------------------------------------------

func runREPL(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	r := &REPL{In: strings.NewReader(input), Out: &out, Functions: functions()}
	require.NoError(t, r.Run(context.Background()))
	return out.String()
}

func TestREPL_InvokesBrands(t *testing.T) {
	out := runREPL(t, "/brands/2\n\nexit\n/brands/3\n")

	assert.Contains(t, out, "GET /brands/2 -> 200")
	assert.Contains(t, out, `"name": "Adidas"`)
	assert.Contains(t, out, "Goodbye!")
	assert.NotContains(t, out, "/brands/3 ->", "input after exit is ignored")
}

func TestREPL_SwitchFunction(t *testing.T) {
	out := runREPL(t, "use get-info\n/?name=Ada\nuse nope\nquit\n")

	assert.Contains(t, out, "active function: get-info")
	assert.Contains(t, out, "OpenFaaS GET function is working!")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, `unknown function "nope"`)
}

func TestREPL_ReportsBadInput(t *testing.T) {
	out := runREPL(t, "{broken\n/brands/999\n")

	assert.Contains(t, out, "error: invalid JSON")
	assert.Contains(t, out, "GET /brands/999 -> 404")
}

func TestREPL_NoFunctions(t *testing.T) {
	r := &REPL{In: strings.NewReader(""), Out: io.Discard}

	assert.Error(t, r.Run(context.Background()))
}

// ---------------------------------------------------------------------------
// Call
// ---------------------------------------------------------------------------

func newClient(t *testing.T, baseURL string, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(baseURL, httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 4}, discardLogger(), opts...)
	require.NoError(t, err)
	return c
}

func TestCall_PrintsResponseAndCurl(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/function/brands-list/", faas.Adapter(functions()[0], "/function/brands-list"))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newClient(t, srv.URL, client.WithBasePath("/function/brands-list"))
	var out bytes.Buffer

	err := Call(context.Background(), c, &out, CallOptions{
		Method:   http.MethodGet,
		Path:     "/countries",
		Query:    url.Values{},
		Function: "brands-list",
		Gateway:  srv.URL,
	})

	require.NoError(t, err)
	s := out.String()
	assert.Contains(t, s, "Status: 200")
	assert.Contains(t, s, `"South Korea"`)
	assert.Contains(t, s, srv.URL+"/function/brands-list/categories | jq .")
	assert.Contains(t, s, srv.URL+"/async-function/brands-list")
}

func TestCall_GatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	gateway := srv.URL
	srv.Close()

	c := newClient(t, gateway)
	var out bytes.Buffer

	err := Call(context.Background(), c, &out, CallOptions{
		Method:   http.MethodGet,
		Path:     "/",
		Function: "brands-list",
		Gateway:  gateway,
	})

	require.Error(t, err)
	assert.Contains(t, out.String(), "faas-cli list --gateway "+gateway)
}
