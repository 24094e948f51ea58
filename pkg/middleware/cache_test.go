package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	handler := CacheControl(OneYear)(okHandler())

	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "public, max-age=31536000"},
		{http.MethodHead, "public, max-age=31536000"},
		{http.MethodPost, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/images/logo.png", nil))
			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestNoStore(t *testing.T) {
	rec := httptest.NewRecorder()
	NoStore(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/brands", nil))

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
