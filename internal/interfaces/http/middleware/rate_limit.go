package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/pkg/metrics"
)

// CodeRateLimited is returned when a tenant exceeds its request rate
const CodeRateLimited = "ERR_RATE_LIMITED"

// KeyedLimiter holds one token bucket per key
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewKeyedLimiter allows rps requests per second per key with the given burst.
// A non-positive rps disables limiting.
func NewKeyedLimiter(rps float64, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether key may make a request now
func (l *KeyedLimiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// RateLimitMiddleware limits requests per tenant, or per client IP before
// a tenant is known
func RateLimitMiddleware(limiter *KeyedLimiter, m *metrics.BrokerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(TenantIDKey)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			if m != nil {
				m.RateLimited.Inc()
			}
			c.Header("Retry-After", "1")
			response.ErrorWithError(c, http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
