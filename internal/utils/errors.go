package utils

import (
	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/logging"

	"github.com/gin-gonic/gin"
)

// HandleAPIError logs err with request details and responds with code only.
// Error details never reach the caller.
func HandleAPIError(c *gin.Context, err error, status int, code common.ErrorCode, message string) {
	logger := logging.GetLogger()
	logger.LogHTTPError(
		c.Request.Method,
		c.Request.URL.Path,
		ClientKey(c.Request),
		status,
		message,
		err,
	)

	AbortWithCode(c, status, code)
}
