package handlers

import (
	"net/http"

	"github.com/geonix/geonix-web/internal/api/dto/common"
	"github.com/geonix/geonix-web/internal/version"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	version string
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{version: version.Version}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, common.HealthResponse{OK: true, Version: h.version})
}
