package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseNetworks(t *testing.T) {
	nets := ParseNetworks([]string{" 10.1.2.3/8 ", "", "bogus", "::1/128"}, discardLogger())

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
	}, nets)
}

func TestAllowNetworks(t *testing.T) {
	nets := ParseNetworks([]string{"127.0.0.1/32", "::1/128", "10.0.0.0/8"}, discardLogger())
	h := AllowNetworks(nets, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:5100", http.StatusNoContent},
		{"127.0.0.1", http.StatusNoContent},
		{"[::1]:5100", http.StatusNoContent},
		{"[::ffff:10.4.4.4]:5100", http.StatusNoContent},
		{"10.200.0.1:80", http.StatusNoContent},
		{"127.0.0.2:5100", http.StatusForbidden},
		{"192.168.1.9:5100", http.StatusForbidden},
		{"not-an-ip", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAllowNetworks_EmptyRefusesAll(t *testing.T) {
	h := AllowNetworks(nil, discardLogger())(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:1"
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "access restricted by IP allowlist", body["error"])
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, discardLogger())

	serve := func(path, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	index := serve("/debug/pprof/", "127.0.0.1:9000")
	assert.Equal(t, http.StatusOK, index.Code)
	assert.Contains(t, index.Body.String(), "goroutine")

	assert.Equal(t, http.StatusOK, serve("/debug/pprof/cmdline", "127.0.0.1:9000").Code)
	assert.Equal(t, http.StatusForbidden, serve("/debug/pprof/heap", "203.0.113.7:9000").Code)
}
