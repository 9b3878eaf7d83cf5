package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for the rate limiter
type RateLimitConfig struct {
	// Requests per second
	RPS int
	// Burst size (number of requests that can be made in a single burst)
	Burst int
}

// RateLimitMiddleware applies one token bucket to every request it sees.
// It protects the process as a whole; per-client limits are ClientRateLimit's job.
// A non-positive RPS disables it.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(config.RPS), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			utils.AbortWithCode(c, http.StatusTooManyRequests, common.ErrCodeRateLimited)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RPS))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Header("X-RateLimit-Reset", time.Now().Add(time.Second/time.Duration(config.RPS)).UTC().Format(time.RFC1123))

		c.Next()
	}
}
