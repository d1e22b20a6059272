package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a token bucket per caller identity (X-User-Id header,
// falling back to the remote address). Buckets are kept for the process
// lifetime; the caller population here is small.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[key]; ok {
			return l
		}
		l := rate.NewLimiter(rps, burst)
		limiters[key] = l
		return l
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-User-Id")
		if key == "" {
			key = c.ClientIP()
		}

		if !limiterFor(key).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": gin.H{
				"code": "RATE_LIMITED", "message": "too many requests",
			}})
			c.Abort()
			return
		}
		c.Next()
	}
}
