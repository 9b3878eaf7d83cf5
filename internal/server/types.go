package server

import (
	"net/http"

	"github.com/geonix/geonix-web/internal/config"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/mail"
	"github.com/geonix/geonix-web/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	logger     *logging.Logger
	httpServer *http.Server
}

// Dependencies holds the collaborators a Server is built from.
// Nil fields are constructed from the config.
type Dependencies struct {
	Sender  mail.Sender
	Limiter ratelimit.Limiter
	Logger  *logging.Logger
}
