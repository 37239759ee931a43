package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per caller over a fixed window, held
// entirely in process memory. Two instances guard the API: a general
// one for authenticated routes and a stricter one for the public
// quote-link endpoints, which are reachable without credentials.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	count   int
	startAt time.Time
}

// NewRateLimiter allows limit requests per key within each period.
// Stale windows are swept in the background so idle callers do not
// accumulate forever.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.period * 2)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * rl.period)
		rl.mu.Lock()
		for key, w := range rl.windows {
			if w.startAt.Before(cutoff) {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Take consumes one request slot for key. It reports whether the
// request is admitted and how many slots remain in the window.
func (rl *RateLimiter) Take(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.windows[key]
	if w == nil || now.Sub(w.startAt) >= rl.period {
		rl.windows[key] = &window{count: 1, startAt: now}
		return true, rl.limit - 1
	}

	if w.count >= rl.limit {
		return false, 0
	}
	w.count++
	return true, rl.limit - w.count
}

// RateLimit rejects callers that exceed the limiter's budget with 429,
// keyed by client IP. Admitted requests carry X-RateLimit headers so
// clients can pace themselves.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := limiter.Take(c.ClientIP())
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
