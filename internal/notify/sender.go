// Package notify renders and delivers transactional email.
package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Email is a rendered message ready for delivery.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, e Email) (string, error)
}

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender authenticated with apiKey.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, e Email) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      e.To,
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}

// LogSender writes emails to the log instead of sending them.
// It is used when no Resend API key is configured.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, e Email) (string, error) {
	s.log.WithFields(logrus.Fields{
		"event":   "email_skipped",
		"to":      e.To,
		"subject": e.Subject,
	}).Info("email delivery disabled, message logged only")
	return "", nil
}
