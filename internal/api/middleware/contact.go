package middleware

import (
	"net/http"
	"strconv"

	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/ratelimit"
	"github.com/geonix/geonix-web/internal/utils"

	"github.com/gin-gonic/gin"
)

// MethodGate rejects every method except the given one
func MethodGate(method string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != method {
			utils.AbortWithCode(c, http.StatusMethodNotAllowed, common.ErrCodeMethodNotAllowed)
			return
		}
		c.Next()
	}
}

// Honeypot answers {ok:true} without doing anything when the hidden form
// field was filled in. The caller cannot tell this apart from success.
func Honeypot(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if req, ok := ContactFromContext(c); ok && req.IsBot() {
			logger.Info("Honeypot triggered from %s, discarding submission", utils.ClientKey(c.Request))
			c.AbortWithStatusJSON(http.StatusOK, common.NewOKResponse())
			return
		}
		c.Next()
	}
}

// ClientRateLimit throttles by client key with the injected limiter
func ClientRateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Allow(utils.ClientKey(c.Request))
		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfterSeconds()))
			utils.AbortWithCode(c, http.StatusTooManyRequests, common.ErrCodeRateLimited)
			return
		}
		c.Next()
	}
}
