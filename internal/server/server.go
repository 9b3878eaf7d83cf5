package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/geonix/geonix-web/internal/api/handlers"
	"github.com/geonix/geonix-web/internal/api/middleware"
	"github.com/geonix/geonix-web/internal/config"
	"github.com/geonix/geonix-web/internal/i18n"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/mail"
	"github.com/geonix/geonix-web/internal/ratelimit"
	"github.com/geonix/geonix-web/internal/server/routes"
	"github.com/geonix/geonix-web/internal/service"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies the process in traces
const ServiceName = "geonix-web"

const shutdownTimeout = 10 * time.Second

// NewServer creates a new server with every route registered
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	// Disable Gin's default logger entirely because we're using our custom logger
	gin.DefaultWriter = io.Discard

	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	sender := deps.Sender
	if sender == nil {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Secure:   cfg.Mail.Secure,
			Username: cfg.Mail.User,
			Password: cfg.Mail.Password,
		})
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewFixedWindow(cfg.Contact.RateLimitWindow, cfg.Contact.RateLimitMax)
	}

	contactService := service.NewContactService(
		cfg.Mail,
		sender,
		renderer,
		i18n.Default(),
		service.NewTicketGenerator(cfg.Contact.TicketPrefix, cfg.Contact.TicketLocation()),
		logger,
	)

	router := gin.New()

	routes.SetupGlobalMiddleware(router, logger, routes.GlobalOptions{
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.AllowedOrigins,
			Development:    !cfg.IsProduction(),
		},
		RateLimit: middleware.RateLimitConfig{
			RPS:   cfg.GlobalRPS,
			Burst: cfg.GlobalBurst,
		},
		LogRequests: cfg.LogRequests,
		Tracing:     cfg.OTLPEndpoint != "",
		ServiceName: ServiceName,
	})

	routes.Setup(router, &routes.Handlers{
		Health:  handlers.NewHealthHandler(),
		Contact: handlers.NewContactHandler(contactService),
	}, &routes.Middleware{
		Validation:     middleware.NewValidationMiddleware(logger),
		ContactLimiter: limiter,
	}, logger)

	if !cfg.Mail.Configured() {
		logger.Warn("Mail transport is not configured; contact submissions will be rejected")
	}

	return &Server{
		router: router,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the configured port until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening on %s", ln.Addr())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
