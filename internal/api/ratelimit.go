package api

import (
	"net/http"

	"github.com/bookdenapp/bookden-server/internal/http/response"
	"github.com/bookdenapp/bookden-server/internal/ratelimit"
)

// newLoginLimiter builds the shared limiter for credential endpoints.
// The config expresses the rate per minute; the limiter wants requests
// per second.
func newLoginLimiter(ratePerMinute, burst int) *ratelimit.KeyedRateLimiter {
	if ratePerMinute <= 0 {
		ratePerMinute = 20
	}
	if burst <= 0 {
		burst = 5
	}
	return ratelimit.New(float64(ratePerMinute)/60.0, burst)
}

// rateLimitByIP limits requests per client IP on the wrapped routes.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)

		if !s.loginLimiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may contain multiple IPs, first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
