package entity

import (
	"time"

	"github.com/google/uuid"
)

// MailKind selects the template an outbound mail is rendered with.
type MailKind string

const (
	MailPasswordReset MailKind = "password_reset"
	MailGuestDataKept MailKind = "guest_data_kept"
)

// MailState is the delivery state of an outbound mail.
type MailState string

const (
	MailQueued    MailState = "queued"
	MailSending   MailState = "sending"
	MailDelivered MailState = "delivered"
	MailDead      MailState = "dead"
)

const (
	// MaxMailAttempts bounds delivery attempts before a mail is dead.
	MaxMailAttempts = 4
	// MailLease is how long a claimed mail stays with one dispatcher. A mail
	// still sending after its lease is claimable again.
	MailLease = 5 * time.Minute

	firstMailRetry = 30 * time.Second
)

// OutboundMail is one transactional email in the outbox. Vars are the
// template variables; they are plain strings so they survive storage as-is.
type OutboundMail struct {
	ID            uuid.UUID
	Kind          MailKind
	To            string
	ToName        string
	Subject       string
	Vars          map[string]string
	State         MailState
	Attempts      int
	LastError     string
	ProviderID    string
	CreatedAt     time.Time
	NextAttemptAt time.Time
	DeliveredAt   *time.Time
}

// NewOutboundMail queues a mail for immediate delivery.
func NewOutboundMail(kind MailKind, to, toName, subject string, vars map[string]string, now time.Time) *OutboundMail {
	if vars == nil {
		vars = map[string]string{}
	}
	return &OutboundMail{
		ID:            uuid.New(),
		Kind:          kind,
		To:            to,
		ToName:        toName,
		Subject:       subject,
		Vars:          vars,
		State:         MailQueued,
		CreatedAt:     now,
		NextAttemptAt: now,
	}
}

// IsDue reports whether a dispatcher may claim the mail at now.
func (m *OutboundMail) IsDue(now time.Time) bool {
	switch m.State {
	case MailQueued, MailSending:
		return !m.NextAttemptAt.After(now)
	default:
		return false
	}
}

// Claim moves the mail to sending under a lease.
func (m *OutboundMail) Claim(now time.Time) {
	m.State = MailSending
	m.NextAttemptAt = now.Add(MailLease)
}

// Delivered closes the mail.
func (m *OutboundMail) Delivered(providerID string, now time.Time) {
	m.State = MailDelivered
	m.ProviderID = providerID
	m.LastError = ""
	m.DeliveredAt = &now
}

// Failed records an attempt. Permanent failures and the last allowed attempt
// kill the mail; anything else is retried with a growing delay.
func (m *OutboundMail) Failed(err error, permanent bool, now time.Time) {
	m.Attempts++
	if err != nil {
		m.LastError = err.Error()
	}
	if permanent || m.Attempts >= MaxMailAttempts {
		m.State = MailDead
		return
	}
	m.State = MailQueued
	m.NextAttemptAt = now.Add(RetryDelay(m.Attempts))
}

// RetryDelay is the wait after the given number of failed attempts:
// 30s, 2m, 8m and so on.
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		return 0
	}
	delay := firstMailRetry
	for i := 1; i < attempts; i++ {
		delay *= 4
	}
	return delay
}
