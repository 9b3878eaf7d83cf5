package middleware

import (
	"time"

	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request. A disabled logger is a no-op.
func RequestLogger(logger *logging.Logger, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.LogHTTPRequest(
			c.Request.Method,
			path,
			utils.ClientKey(c.Request),
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).String(),
		)
	}
}
