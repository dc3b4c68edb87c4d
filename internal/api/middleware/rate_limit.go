package middleware

import (
	"fmt"
	"net/http"
	"time"

	"chatterbox/internal/cache"
	"chatterbox/pkg/response"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	limiter *cache.RateLimiter
}

func NewRateLimitMiddleware(limiter *cache.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// RateLimit limits authenticated requests per user and endpoint.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			response.Error(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate:%s:%s", userID, c.Request.URL.Path)
		rm.check(c, key, requests, window)
	}
}

// RateLimitIP limits public routes by client address.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate:ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		rm.check(c, key, requests, window)
	}
}

func (rm *RateLimitMiddleware) check(c *gin.Context, key string, requests int, window time.Duration) {
	allowed, err := rm.limiter.Allow(c.Request.Context(), key, requests, window)
	if err != nil {
		// Fail open: redis being down should not take the API with it.
		c.Next()
		return
	}
	if !allowed {
		response.Error(c, http.StatusTooManyRequests, fmt.Sprintf("rate limit exceeded: %d per %v", requests, window))
		c.Abort()
		return
	}
	c.Next()
}
