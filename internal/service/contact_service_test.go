package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends to the inbox with reply-to", func(t *testing.T) {
		mailer := &recordingMailer{}
		service := NewContactService(mailer, "shop@example.com", zerolog.Nop())

		err := service.Submit(ctx, &model.ContactRequest{
			Name:    "jane doe",
			Email:   "Jane@Example.com",
			Subject: "Where is my order?",
			Message: "It has been a week.",
		})

		require.NoError(t, err)
		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, "shop@example.com", msg.To)
		assert.Equal(t, "jane@example.com", msg.ReplyTo)
		assert.Equal(t, "Contact Form: Where is my order?", msg.Subject)
		assert.Contains(t, msg.HTML, "Jane Doe")
	})

	t.Run("All fields are required", func(t *testing.T) {
		mailer := &recordingMailer{}
		service := NewContactService(mailer, "shop@example.com", zerolog.Nop())

		err := service.Submit(ctx, &model.ContactRequest{Name: "Jane"})

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "subject")
		assert.Contains(t, verr.Fields, "message")
		assert.Empty(t, mailer.sent)
	})

	t.Run("Mailer failure", func(t *testing.T) {
		mailer := &recordingMailer{err: errors.New("smtp down")}
		service := NewContactService(mailer, "shop@example.com", zerolog.Nop())

		err := service.Submit(ctx, &model.ContactRequest{
			Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Hello",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send email")
	})
}
