package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/metrics"
	"golang.org/x/time/rate"
)

// per-key limiter store (simple in-memory token-bucket)
var limiterStore sync.Map // map[string]*rate.Limiter

// getLimiter returns (and lazily creates) a token-bucket limiter for the given key.
// Limiters are scoped by their parameters so routes with different limits never share a bucket.
func getLimiter(key string, rps float64, burst int) *rate.Limiter {
	storeKey := fmt.Sprintf("%s|%g|%d", key, rps, burst)
	v, _ := limiterStore.LoadOrStore(storeKey, rate.NewLimiter(rate.Limit(rps), burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware limits state-changing requests (anything but GET, HEAD
// and OPTIONS) per caller within scope, using an in-process token bucket.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(scope string, rps float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if safeMethod(c.Request.Method) {
			c.Next()
			return
		}
		lim := getLimiter(scope+":"+rateLimitKey(c), rps, burst)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// rateLimitKey prefers the authenticated subject (NAT-friendly) and falls back to the client IP.
func rateLimitKey(c *gin.Context) string {
	if u := CurrentUser(c); u != nil && u.Sub != "" {
		return "sub:" + u.Sub
	}
	if v, ok := c.Get(claimsKey); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			if sub, ok3 := cm["sub"].(string); ok3 && sub != "" {
				return "sub:" + sub
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
