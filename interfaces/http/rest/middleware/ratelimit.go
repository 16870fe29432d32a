package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"flowbuilder/pkg/errors"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// RateLimit refuses requests beyond the limiter's budget with 429. Clients
// are keyed by remote IP, so RealIP must run first.
func RateLimit(limiter Limiter, errorHandler *errors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, retryAfter := limiter.Allow("ip:" + ip)
			if !allowed {
				logger.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				errorHandler.HandleStatus(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
