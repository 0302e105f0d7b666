package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutboundMailLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("retries then dies", func(t *testing.T) {
		mail := NewOutboundMail(MailPasswordReset, "a@example.com", "A", "Reset", nil, now)
		assert.True(t, mail.IsDue(now))
		assert.NotNil(t, mail.Vars)

		for attempt := 1; attempt < MaxMailAttempts; attempt++ {
			mail.Claim(now)
			mail.Failed(errors.New("timeout"), false, now)
			assert.Equal(t, MailQueued, mail.State)
			assert.Equal(t, now.Add(RetryDelay(attempt)), mail.NextAttemptAt)
			assert.False(t, mail.IsDue(now))
		}

		mail.Failed(errors.New("timeout"), false, now)
		assert.Equal(t, MailDead, mail.State)
		assert.Equal(t, "timeout", mail.LastError)
		assert.False(t, mail.IsDue(now.Add(time.Hour)))
	})

	t.Run("permanent failure dies at once", func(t *testing.T) {
		mail := NewOutboundMail(MailGuestDataKept, "b@example.com", "", "Kept", nil, now)
		mail.Failed(errors.New("invalid recipient"), true, now)
		assert.Equal(t, MailDead, mail.State)
		assert.Equal(t, 1, mail.Attempts)
	})

	t.Run("expired lease is due again", func(t *testing.T) {
		mail := NewOutboundMail(MailGuestDataKept, "c@example.com", "", "Kept", nil, now)
		mail.Claim(now)
		assert.False(t, mail.IsDue(now.Add(time.Minute)))
		assert.True(t, mail.IsDue(now.Add(MailLease)))
	})

	t.Run("delivered", func(t *testing.T) {
		mail := NewOutboundMail(MailPasswordReset, "d@example.com", "", "Reset", nil, now)
		mail.Claim(now)
		mail.Delivered("re_123", now)
		assert.Equal(t, MailDelivered, mail.State)
		assert.Equal(t, "re_123", mail.ProviderID)
		assert.Equal(t, now, *mail.DeliveredAt)
		assert.False(t, mail.IsDue(now))
	})
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), RetryDelay(0))
	assert.Equal(t, 30*time.Second, RetryDelay(1))
	assert.Equal(t, 2*time.Minute, RetryDelay(2))
	assert.Equal(t, 8*time.Minute, RetryDelay(3))
}
