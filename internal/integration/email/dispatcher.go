package email

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/email/templates"
)

// DeliveryMetrics counts delivery attempts by mail kind and resulting state.
type DeliveryMetrics interface {
	MailAttempted(kind entity.MailKind, state entity.MailState)
}

// DispatcherConfig tunes the dispatch loop.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// Parallel bounds concurrent provider calls within one batch.
	Parallel int
	// Retention is how long delivered mails are kept. Zero keeps them.
	Retention time.Duration
}

// Dispatcher claims due mails from the outbox, renders and delivers them.
// Several dispatchers may share one outbox.
type Dispatcher struct {
	outbox    adapter.MailOutbox
	mailer    adapter.Mailer
	templates *templates.Set
	metrics   DeliveryMetrics
	cfg       DispatcherConfig
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher. metrics may be nil.
func NewDispatcher(outbox adapter.MailOutbox, mailer adapter.Mailer, set *templates.Set, metrics DeliveryMetrics, cfg DispatcherConfig) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 1
	}
	return &Dispatcher{
		outbox:    outbox,
		mailer:    mailer,
		templates: set,
		metrics:   metrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run dispatches on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("Mail dispatcher started", "poll_interval", d.cfg.PollInterval, "batch_size", d.cfg.BatchSize)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	lastPurge := time.Time{}
	for {
		d.DispatchDue(ctx)
		if d.cfg.Retention > 0 && d.now().Sub(lastPurge) >= time.Hour {
			d.purge(ctx)
			lastPurge = d.now()
		}

		select {
		case <-ctx.Done():
			slog.Info("Mail dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// DispatchDue delivers one batch and returns how many mails were delivered.
func (d *Dispatcher) DispatchDue(ctx context.Context) int {
	batch, err := d.outbox.ClaimDue(ctx, d.now(), d.cfg.BatchSize)
	if err != nil {
		slog.Error("Failed to claim due mail", "error", err)
	}
	if len(batch) == 0 {
		return 0
	}

	delivered := make([]bool, len(batch))
	var g errgroup.Group
	g.SetLimit(d.cfg.Parallel)
	for i, mail := range batch {
		g.Go(func() error {
			delivered[i] = d.deliver(ctx, mail)
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, ok := range delivered {
		if ok {
			count++
		}
	}
	return count
}

func (d *Dispatcher) deliver(ctx context.Context, mail *entity.OutboundMail) bool {
	log := slog.With("mailID", mail.ID, "kind", mail.Kind)

	html, text, err := d.templates.Render(mail.Kind, mail.Vars)
	if err == nil {
		var providerID string
		providerID, err = d.mailer.Deliver(ctx, adapter.Mail{
			To:      mail.To,
			ToName:  mail.ToName,
			Subject: mail.Subject,
			HTML:    html,
			Text:    text,
		})
		if err == nil {
			mail.Delivered(providerID, d.now().UTC())
		}
	}
	if err != nil {
		mail.Failed(err, domainerror.IsPermanentMailFailure(err), d.now().UTC())
		if mail.State == entity.MailDead {
			log.Warn("Mail abandoned", "attempts", mail.Attempts, "error", err)
		} else {
			log.Info("Mail delivery failed, will retry", "attempts", mail.Attempts, "next_attempt_at", mail.NextAttemptAt, "error", err)
		}
	}

	if d.metrics != nil {
		d.metrics.MailAttempted(mail.Kind, mail.State)
	}
	// A lost save leaves the lease to expire and the mail is sent again.
	if saveErr := d.outbox.Save(ctx, mail); saveErr != nil {
		log.Error("Failed to save mail state", "state", mail.State, "error", saveErr)
	}
	return mail.State == entity.MailDelivered
}

func (d *Dispatcher) purge(ctx context.Context) {
	n, err := d.outbox.PurgeDelivered(ctx, d.now().Add(-d.cfg.Retention))
	if err != nil {
		slog.Error("Failed to purge delivered mail", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Purged delivered mail", "count", n)
	}
}
