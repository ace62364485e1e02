package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v3"

	"flock-server/internal/config"
)

type Service interface {
	// SendWarningAlert mails a copy of a warning-flagged alert to the
	// configured admin address.
	SendWarningAlert(ctx context.Context, subject, text string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

// NewService returns nil when no API key or admin address is configured;
// callers treat a nil Service as "email disabled".
func NewService(cfg *config.Config) Service {
	if cfg.ResendAPIKey == "" || cfg.AdminEmail == "" {
		return nil
	}
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

func (s *service) SendWarningAlert(ctx context.Context, subject, text string) error {
	body := fmt.Sprintf("<pre>%s</pre>", html.EscapeString(stripChatMarkup(text)))

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Flock Server <%s>", s.config.FromEmail),
		To:      []string{s.config.AdminEmail},
		Subject: fmt.Sprintf("[flock warning] %s", subject),
		Html:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	return err
}

// stripChatMarkup removes the chat-only decorations (broadcast mention,
// code fences) that mean nothing in an email.
func stripChatMarkup(text string) string {
	text = strings.TrimPrefix(text, "@here ")
	return strings.ReplaceAll(text, "```", "")
}
