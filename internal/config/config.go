package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	gomail "github.com/emersion/go-message/mail"

	envfile "github.com/geonix/geonix-web/internal/config/env"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment    string `env:"ENV" envDefault:"development"`
	Port           string `env:"API_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile        string `env:"LOG_FILE"`
	LogRequests    bool   `env:"LOG_REQUESTS" envDefault:"false"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// Global throttle applied to every route
	GlobalRPS   int `env:"GLOBAL_RPS" envDefault:"10"`
	GlobalBurst int `env:"GLOBAL_BURST" envDefault:"20"`

	// Telemetry Configuration
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Mail    MailConfig
	Contact ContactConfig
}

// MailConfig holds the SMTP transport settings
type MailConfig struct {
	Host     string `env:"MAIL_HOST"`
	Port     int    `env:"MAIL_PORT" envDefault:"465"`
	Secure   bool   `env:"MAIL_SECURE" envDefault:"true"`
	User     string `env:"MAIL_USER"`
	Password string `env:"MAIL_PASS"`
	To       string `env:"MAIL_TO"`
	FromName string `env:"MAIL_FROM_NAME" envDefault:"GEONIX"`
}

// Configured reports whether every value needed to send mail is present.
func (m MailConfig) Configured() bool {
	return m.Host != "" && m.User != "" && m.Password != "" && m.To != ""
}

// Recipients parses MAIL_TO, a comma-separated address list.
// An empty value yields no recipients.
func (m MailConfig) Recipients() ([]string, error) {
	if strings.TrimSpace(m.To) == "" {
		return nil, nil
	}
	list, err := gomail.ParseAddressList(m.To)
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_TO %q: %w", m.To, err)
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Address)
	}
	return out, nil
}

// ContactConfig holds the contact intake policy
type ContactConfig struct {
	TicketPrefix    string        `env:"TICKET_PREFIX" envDefault:"GEONIX"`
	TicketTimezone  string        `env:"TICKET_TIMEZONE" envDefault:"Asia/Seoul"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"3"`
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	envfile.LoadEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if cfg.Contact.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.Contact.RateLimitMax)
	}
	if cfg.Contact.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", cfg.Contact.RateLimitWindow)
	}

	if _, err := cfg.Mail.Recipients(); err != nil {
		return nil, err
	}

	// Set default log file if not set
	if cfg.LogFile == "" {
		if cfg.IsProduction() {
			cfg.LogFile = "/app/logs/contact.log"
		} else {
			cfg.LogFile = "./logs/contact.log"
		}
	}

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return cfg, nil
}

// TicketLocation resolves the configured ticket time zone, falling back to UTC.
func (c ContactConfig) TicketLocation() *time.Location {
	loc, err := time.LoadLocation(c.TicketTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
