package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/geonix/geonix-web/internal/mail"

// SMTPConfig holds the transport settings for SMTPSender
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS, otherwise STARTTLS when offered
	Username string
	Password string

	// TLSConfig overrides the default client TLS configuration
	TLSConfig *tls.Config
}

// SMTPSender delivers envelopes over SMTP, one connection per message
type SMTPSender struct {
	cfg SMTPConfig
	now func() time.Time
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, now: time.Now}
}

// Send composes env and submits it. The context is only checked before
// dialing; the SMTP client's own timeouts apply afterwards.
func (s *SMTPSender) Send(ctx context.Context, env Envelope) (err error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "smtp.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("server.address", s.cfg.Host),
			attribute.Int("server.port", s.cfg.Port),
			attribute.Bool("smtp.implicit_tls", s.cfg.Secure),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "send failed")
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("smtp.recipients", len(env.To)))

	msg, err := Compose(env, s.now())
	if err != nil {
		return err
	}

	c, err := s.connect()
	if err != nil {
		return err
	}
	defer c.Close()

	if s.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.SendMail(HeaderSafe(env.From.Email), Emails(env.To), bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	if err := c.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}
	return nil
}

func (s *SMTPSender) connect() (*smtp.Client, error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	tlsConfig := s.tlsConfig()

	if s.cfg.Secure {
		c, err := smtp.DialTLS(addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("smtp dial tls %s: %w", addr, err)
		}
		return c, nil
	}

	c, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if ok, _ := c.Extension("STARTTLS"); !ok {
		return c, nil
	}

	// The client can only upgrade before its first EHLO, so the first
	// session is dropped and a new one negotiates STARTTLS.
	if err := c.Quit(); err != nil {
		c.Close()
	}
	c, err = smtp.DialStartTLS(addr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("smtp starttls %s: %w", addr, err)
	}
	return c, nil
}

func (s *SMTPSender) tlsConfig() *tls.Config {
	if s.cfg.TLSConfig != nil {
		return s.cfg.TLSConfig
	}
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}
