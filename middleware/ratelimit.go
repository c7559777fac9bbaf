package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const RateLimitMessage = "Rate limit exceeded. Please try again later."

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// stay idle for the expiry window are evicted.
type RateLimiter struct {
	limiters *cache.Cache
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: cache.New(10*time.Minute, 5*time.Minute),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// limiter returns the bucket for ip, creating it on first use
func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if l, found := rl.limiters.Get(ip); found {
		rl.limiters.SetDefault(ip, l)
		return l.(*rate.Limiter)
	}

	l := rate.NewLimiter(rl.rate, rl.burst)
	if err := rl.limiters.Add(ip, l, cache.DefaultExpiration); err != nil {
		// another request created it first
		if existing, found := rl.limiters.Get(ip); found {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

// Allow reports whether ip may make a request now
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.limiter(ip).Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": RateLimitMessage,
			})
			return
		}

		c.Next()
	}
}
