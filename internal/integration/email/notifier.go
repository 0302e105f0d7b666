// Package email queues transactional emails in the outbox and delivers them
// through Resend.
package email

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
)

// Notifier turns use case notices into outbox mails. Nothing is sent here.
type Notifier struct {
	outbox     adapter.MailOutbox
	appBaseURL string
	now        func() time.Time
}

// NewNotifier creates a Notifier writing to outbox.
func NewNotifier(outbox adapter.MailOutbox, appBaseURL string) *Notifier {
	return &Notifier{
		outbox:     outbox,
		appBaseURL: appBaseURL,
		now:        time.Now,
	}
}

var _ adapter.Notifier = (*Notifier)(nil)

func (n *Notifier) NotifyPasswordReset(ctx context.Context, notice adapter.PasswordResetNotice) error {
	return n.outbox.Enqueue(ctx, entity.NewOutboundMail(
		entity.MailPasswordReset,
		notice.Email,
		notice.Name,
		"Reset your Annoyance Journal password",
		map[string]string{
			"name":      notice.Name,
			"link":      notice.Link,
			"valid_for": humanizeDuration(notice.ValidFor),
		},
		n.now().UTC(),
	))
}

func (n *Notifier) NotifyGuestDataKept(ctx context.Context, notice adapter.GuestDataKeptNotice) error {
	subject := "Your guest entries are still on your device"
	if notice.Entries > 0 {
		subject = fmt.Sprintf("%d entries are still waiting on your device", notice.Entries)
	}
	return n.outbox.Enqueue(ctx, entity.NewOutboundMail(
		entity.MailGuestDataKept,
		notice.Email,
		notice.Name,
		subject,
		map[string]string{
			"name":       notice.Name,
			"entries":    strconv.Itoa(notice.Entries),
			"categories": strconv.Itoa(notice.Categories),
			"app_url":    n.appBaseURL,
		},
		n.now().UTC(),
	))
}

// humanizeDuration renders a lifetime for email copy, e.g. "1 hour" or "30 minutes".
func humanizeDuration(d time.Duration) string {
	count := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	const day = 24 * time.Hour
	switch {
	case d >= day && d%day == 0:
		return count(int(d/day), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return count(int(d/time.Hour), "hour")
	default:
		return count(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}
