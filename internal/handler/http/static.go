package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/utafrali/brands-faas/pkg/httputil"
	"github.com/utafrali/brands-faas/pkg/logger"
)

// StaticPrefixes are the top-level directories served from the static root.
var StaticPrefixes = []string{"images", "assets", "clients"}

var mimeTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".txt":   "text/plain; charset=utf-8",
}

// contentType maps a file name to its MIME type by extension.
func contentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := mimeTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// StaticHandler serves files below dir. Request paths are resolved through
// an os.Root, so nothing outside dir is reachable.
type StaticHandler struct {
	dir    string
	logger *slog.Logger
}

// NewStaticHandler creates a static file handler rooted at dir.
func NewStaticHandler(dir string, logger *slog.Logger) *StaticHandler {
	return &StaticHandler{dir: dir, logger: logger}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

	f, info, err := h.open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.WithContext(r.Context(), h.logger).WarnContext(r.Context(), "static file unavailable",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		w.Header().Del("Cache-Control")
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(name))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *StaticHandler) open(name string) (*os.File, fs.FileInfo, error) {
	root, err := os.OpenRoot(h.dir)
	if err != nil {
		return nil, nil, err
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}
