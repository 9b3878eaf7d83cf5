package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/geonix/geonix-web/internal/api/constants"
	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/logging"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic anywhere in the chain into 500 send_failed
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("[PANIC] %s %s | %s | %v\n%s",
					c.Request.Method,
					c.Request.URL.Path,
					c.GetString(constants.ContextKeyRequestID),
					err,
					debug.Stack(),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.NewErrorResponse(common.ErrCodeSendFailed))
			}
		}()

		c.Next()
	}
}
