package adapter

import (
	"context"
	"time"

	"github.com/annoylog/backend/internal/domain/entity"
)

// Mail is a rendered message ready for a provider.
type Mail struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer hands a rendered message to an email provider and returns the
// provider's message id.
type Mailer interface {
	Deliver(ctx context.Context, mail Mail) (string, error)
}

// MailOutbox stores outbound mails until a dispatcher delivers them.
type MailOutbox interface {
	Enqueue(ctx context.Context, mail *entity.OutboundMail) error

	// ClaimDue leases up to limit due mails to the caller. A mail is handed
	// to one caller only, even when several dispatchers poll at once.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboundMail, error)

	Save(ctx context.Context, mail *entity.OutboundMail) error

	// PurgeDelivered removes mails delivered before the cutoff.
	PurgeDelivered(ctx context.Context, before time.Time) (int64, error)
}

// Notifier queues the transactional emails the use cases send.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, notice PasswordResetNotice) error
	NotifyGuestDataKept(ctx context.Context, notice GuestDataKeptNotice) error
}

// PasswordResetNotice is the content of a password reset email.
type PasswordResetNotice struct {
	Email    string
	Name     string
	Link     string
	ValidFor time.Duration
}

// GuestDataKeptNotice tells a user that staged guest data stayed on the
// device because the account already had data.
type GuestDataKeptNotice struct {
	Email      string
	Name       string
	Entries    int
	Categories int
}
