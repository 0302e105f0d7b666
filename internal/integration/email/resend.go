package email

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// NewMailer returns a Resend mailer, or a LogMailer when apiKey is empty.
func NewMailer(apiKey, fromName, fromEmail string) adapter.Mailer {
	if apiKey == "" {
		slog.Warn("RESEND_API_KEY not set, emails will only be logged")
		return LogMailer{}
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   (&mail.Address{Name: fromName, Address: fromEmail}).String(),
	}
}

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Deliver(ctx context.Context, msg adapter.Mail) (string, error) {
	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", classifyResendError(err)
	}
	return sent.Id, nil
}

// Resend reports failures as text. Auth, sender and payload problems will
// fail the same way on every attempt; rate limits and 5xx will not.
var rejectedHints = []string{
	"401", "403", "422", "unauthorized", "forbidden",
	"validation", "invalid", "not verified", "bad request",
}

func classifyResendError(err error) error {
	text := strings.ToLower(err.Error())
	for _, hint := range rejectedHints {
		if strings.Contains(text, hint) {
			return domainerror.NewMailError(domainerror.ErrCodeMailRejected, "resend rejected the mail", err)
		}
	}
	return domainerror.NewMailError(domainerror.ErrCodeMailUnavailable, "resend unavailable", err)
}

// LogMailer logs mail instead of delivering it.
type LogMailer struct{}

func (LogMailer) Deliver(_ context.Context, msg adapter.Mail) (string, error) {
	slog.Info("Email not delivered (log mailer)", "to", msg.To, "subject", msg.Subject)
	return "logged", nil
}
