package routes

import (
	"github.com/geonix/geonix-web/internal/api/handlers"
	"github.com/geonix/geonix-web/internal/api/middleware"
	"github.com/geonix/geonix-web/internal/ratelimit"
)

// Handlers contains all the route handlers
type Handlers struct {
	Health  *handlers.HealthHandler
	Contact *handlers.ContactHandler
}

// Middleware contains all the middleware
type Middleware struct {
	Validation *middleware.ValidationMiddleware
	// ContactLimiter throttles contact submissions per client
	ContactLimiter ratelimit.Limiter
}

// GlobalOptions configures middleware applied to every route
type GlobalOptions struct {
	CORS        middleware.CORSConfig
	RateLimit   middleware.RateLimitConfig
	LogRequests bool
	Tracing     bool
	ServiceName string
}
