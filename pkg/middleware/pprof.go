package middleware

import (
	"log/slog"
	"net/http"
	"net/http/pprof"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/brands-faas/pkg/httputil"
)

// RegisterPprof mounts the runtime profiler under /debug/pprof, reachable only
// from the given networks.
func RegisterPprof(r chi.Router, allowedCIDRs []string, logger *slog.Logger) {
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Use(AllowNetworks(ParseNetworks(allowedCIDRs, logger), logger))
		r.HandleFunc("/cmdline", pprof.Cmdline)
		r.HandleFunc("/profile", pprof.Profile)
		r.HandleFunc("/symbol", pprof.Symbol)
		r.HandleFunc("/trace", pprof.Trace)
		r.HandleFunc("/*", pprof.Index)
	})
}

// ParseNetworks parses CIDR strings. Blank entries are ignored and malformed
// ones are logged and dropped.
func ParseNetworks(cidrs []string, logger *slog.Logger) []netip.Prefix {
	nets := make([]netip.Prefix, 0, len(cidrs))
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			logger.Warn("ignoring malformed network", slog.String("cidr", raw), slog.String("error", err.Error()))
			continue
		}
		nets = append(nets, p.Masked())
	}
	return nets
}

// AllowNetworks rejects requests whose peer address is outside nets with a
// 403 failure envelope. An empty list rejects everything.
func AllowNetworks(nets []netip.Prefix, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := peerAddr(r.RemoteAddr)
			if ok && containsAddr(nets, addr) {
				next.ServeHTTP(w, r)
				return
			}
			logger.Warn("debug endpoint refused",
				slog.String("remote", r.RemoteAddr),
				slog.String("path", r.URL.Path),
			)
			httputil.WriteJSON(w, http.StatusForbidden,
				httputil.Fail(time.Now(), "access restricted by IP allowlist"))
		})
	}
}

// peerAddr extracts the IP from a RemoteAddr with or without a port.
func peerAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap(), true
	}
	a, err := netip.ParseAddr(remote)
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

func containsAddr(nets []netip.Prefix, a netip.Addr) bool {
	for _, p := range nets {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
