package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

// contactService implements ContactService.
type contactService struct {
	mailer notify.Mailer
	inbox  string
	logger zerolog.Logger
}

// NewContactService creates a contact service delivering to inbox.
func NewContactService(mailer notify.Mailer, inbox string, logger zerolog.Logger) ContactService {
	return &contactService{
		mailer: mailer,
		inbox:  inbox,
		logger: logger.With().Str("service", "contact").Logger(),
	}
}

// Submit sends the message straight away. Contact messages are not tied to
// an order, so they bypass the outbox.
func (s *contactService) Submit(ctx context.Context, req *model.ContactRequest) error {
	if req == nil {
		req = &model.ContactRequest{}
	}

	form := validation.ValidateFormData(map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	}, validation.ContactRules())
	if !form.Valid {
		return &model.ValidationError{Fields: form.Errors}
	}

	clean := model.ContactRequest{
		Name:    validation.SanitizeName(req.Name),
		Email:   validation.SanitizeEmail(req.Email),
		Subject: validation.SanitizeString(req.Subject),
		Message: validation.SanitizeString(req.Message),
	}

	msg, err := notify.RenderContact(s.inbox, clean)
	if err != nil {
		return fmt.Errorf("failed to render contact message: %w", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("reply_to", clean.Email).Msg("failed to send contact message")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("reply_to", clean.Email).Msg("contact message sent")
	return nil
}
