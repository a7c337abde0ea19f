package ratelimit

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/listenupapp/continue-watching/internal/http/response"
)

// KeyFunc derives the rate limit key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by remote host. Put chi's RealIP middleware in front
// when running behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the per-key limit with 429.
func Middleware(krl *KeyedRateLimiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !krl.Allow(k) {
				if logger != nil {
					logger.Debug("rate limited", "key", k, "path", r.URL.Path)
				}
				w.Header().Set("Retry-After", "1")
				response.TooManyRequests(w, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
