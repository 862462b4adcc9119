// Package notify renders and delivers customer e-mails, and runs the worker
// that drains the notification outbox.
package notify

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Message is one outgoing e-mail.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer delivers a message or reports why it could not.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns an SMTP mailer when SMTP is enabled and a logging
// mailer otherwise, so development setups need no mail server.
func NewMailer(cfg config.SMTPConfig, logger zerolog.Logger) (Mailer, error) {
	if !cfg.Enabled {
		return &logMailer{logger: logger.With().Str("mailer", "log").Logger()}, nil
	}
	return NewSMTPMailer(cfg, logger)
}

type smtpMailer struct {
	client *mail.Client
	from   string
	logger zerolog.Logger
}

// NewSMTPMailer builds a go-mail client that authenticates with LOGIN over
// mandatory TLS.
func NewSMTPMailer(cfg config.SMTPConfig, logger zerolog.Logger) (Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &smtpMailer{
		client: client,
		from:   cfg.From,
		logger: logger.With().Str("mailer", "smtp").Logger(),
	}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	email, err := buildMsg(m.from, msg)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}

	m.logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("e-mail sent")
	return nil
}

func buildMsg(from string, msg Message) (*mail.Msg, error) {
	email := mail.NewMsg()
	if err := email.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := email.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	if msg.ReplyTo != "" {
		if err := email.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return email, nil
}

type logMailer struct {
	logger zerolog.Logger
}

func (m *logMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("e-mail delivery disabled, message logged")
	return nil
}
