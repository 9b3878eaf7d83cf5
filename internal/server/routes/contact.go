package routes

import (
	"net/http"

	"github.com/geonix/geonix-web/internal/api/handlers"
	"github.com/geonix/geonix-web/internal/api/middleware"
	"github.com/geonix/geonix-web/internal/logging"

	"github.com/gin-gonic/gin"
)

// SetupContactRoutes configures the contact endpoint. Every method is routed
// here so non-POST requests get the JSON 405 body.
func SetupContactRoutes(router *gin.RouterGroup, contact *handlers.ContactHandler, m *Middleware, logger *logging.Logger) {
	router.Any("/contact",
		middleware.MethodGate(http.MethodPost),
		m.Validation.ParseContactRequest(),
		middleware.Honeypot(logger),
		middleware.ClientRateLimit(m.ContactLimiter),
		m.Validation.ValidateContactRequest(),
		contact.Submit,
	)
}
