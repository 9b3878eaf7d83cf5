package service

import (
	"context"
	"fmt"

	"github.com/geonix/geonix-web/internal/config"
	"github.com/geonix/geonix-web/internal/i18n"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/mail"
)

const adminFromName = "Website Contact"

// Inquiry is a validated contact form submission
type Inquiry struct {
	Name    string
	Email   string
	Message string
	Company string
	Phone   string
	Website string
}

// ContactResult describes an accepted inquiry
type ContactResult struct {
	Ticket   string
	Language i18n.Lang
}

// ContactService relays inquiries as an admin notification plus an auto-reply
type ContactService struct {
	mailCfg  config.MailConfig
	sender   mail.Sender
	renderer *mail.Renderer
	catalog  *i18n.Catalog
	tickets  *TicketGenerator
	logger   *logging.Logger
}

// NewContactService wires the contact relay
func NewContactService(
	mailCfg config.MailConfig,
	sender mail.Sender,
	renderer *mail.Renderer,
	catalog *i18n.Catalog,
	tickets *TicketGenerator,
	logger *logging.Logger,
) *ContactService {
	return &ContactService{
		mailCfg:  mailCfg,
		sender:   sender,
		renderer: renderer,
		catalog:  catalog,
		tickets:  tickets,
		logger:   logger,
	}
}

// Submit sends the admin notification, then the auto-reply. The sends are
// sequential and not retried; a failed auto-reply is reported as a failure
// even though the admin mail already went out.
func (s *ContactService) Submit(ctx context.Context, in Inquiry) (*ContactResult, error) {
	if !s.mailCfg.Configured() {
		return nil, ErrNotConfigured
	}
	if _, err := s.mailCfg.Recipients(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}

	ticket, err := s.tickets.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	admin, err := s.AdminEnvelope(in, ticket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	if err := s.sender.Send(ctx, admin); err != nil {
		return nil, fmt.Errorf("%w: admin notification %s: %w", ErrSendFailed, ticket, err)
	}
	s.logger.Info("Admin notification sent for ticket %s", ticket)

	lang := i18n.Detect(in.Name, in.Company, in.Message)
	reply, err := s.ReplyEnvelope(in, ticket, lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrSendFailed, ErrAutoReplyFailed, err)
	}
	if err := s.sender.Send(ctx, reply); err != nil {
		return nil, fmt.Errorf("%w: %w: ticket %s: %w", ErrSendFailed, ErrAutoReplyFailed, ticket, err)
	}
	s.logger.Info("Auto-reply (%s) sent for ticket %s", lang, ticket)

	return &ContactResult{Ticket: ticket, Language: lang}, nil
}

// AdminEnvelope builds the notification for the configured recipient.
// Replies go to the submitter.
func (s *ContactService) AdminEnvelope(in Inquiry, ticket string) (mail.Envelope, error) {
	recipients, err := s.recipients()
	if err != nil {
		return mail.Envelope{}, err
	}
	subject := adminSubject(s.catalog, in, ticket)
	text, html, err := s.renderer.Render(adminLetter(s.catalog, in, ticket, subject))
	if err != nil {
		return mail.Envelope{}, err
	}
	return mail.Envelope{
		From:    mail.Address{Name: adminFromName, Email: s.mailCfg.User},
		To:      recipients,
		ReplyTo: []mail.Address{{Name: in.Name, Email: in.Email}},
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, nil
}

// ReplyEnvelope builds the auto-reply to the submitter in lang.
// Replies go back to the admin recipient.
func (s *ContactService) ReplyEnvelope(in Inquiry, ticket string, lang i18n.Lang) (mail.Envelope, error) {
	recipients, err := s.recipients()
	if err != nil {
		return mail.Envelope{}, err
	}
	subject := replySubject(s.catalog, ticket, lang)
	text, html, err := s.renderer.Render(replyLetter(s.catalog, in, ticket, subject, lang))
	if err != nil {
		return mail.Envelope{}, err
	}
	return mail.Envelope{
		From:    mail.Address{Name: s.mailCfg.FromName, Email: s.mailCfg.User},
		To:      []mail.Address{{Name: in.Name, Email: in.Email}},
		ReplyTo: recipients,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, nil
}

// recipients resolves MAIL_TO into the admin mailboxes
func (s *ContactService) recipients() ([]mail.Address, error) {
	emails, err := s.mailCfg.Recipients()
	if err != nil {
		return nil, err
	}
	out := make([]mail.Address, 0, len(emails))
	for _, e := range emails {
		out = append(out, mail.Address{Email: e})
	}
	return out, nil
}
