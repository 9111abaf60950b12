package middleware

import (
	"net/http"
	"sync"
	"time"

	"huntapi/metrics"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a token-bucket limiter keyed by caller. Every request
// arrives through the chat gateway, so buckets key on the relayed solver
// identity when one is present and fall back to the client IP.
type RateLimiter struct {
	buckets  map[string]*bucket
	mu       sync.Mutex
	rate     int           // Tokens refilled per interval
	burst    int           // Burst capacity
	interval time.Duration // Refill interval
}

type bucket struct {
	tokens      int
	lastUpdated time.Time
}

func NewRateLimiter(rate int, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		burst:    burst,
		interval: time.Minute,
	}
}

// Allow consumes one token for the caller, refilling lapsed intervals first.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{tokens: rl.burst, lastUpdated: time.Now()}
		rl.buckets[key] = b
	}

	now := time.Now()
	refill := int(now.Sub(b.lastUpdated)/rl.interval) * rl.rate
	if refill > 0 {
		b.tokens += refill
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.lastUpdated = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// RateLimiterMiddleware rejects callers that exhausted their bucket.
func RateLimiterMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextIdentity)
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.Allow(key) {
			metrics.RateLimiterRejections.WithLabelValues(key).Inc()

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
