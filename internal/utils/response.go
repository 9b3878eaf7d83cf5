package utils

import (
	"net/http"

	"github.com/geonix/geonix-web/internal/api/dto/common"

	"github.com/gin-gonic/gin"
)

// HandleSuccess sends a success response with data
func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// AbortWithCode writes an error body and stops the handler chain
func AbortWithCode(c *gin.Context, status int, code common.ErrorCode) {
	c.AbortWithStatusJSON(status, common.NewErrorResponse(code))
}
