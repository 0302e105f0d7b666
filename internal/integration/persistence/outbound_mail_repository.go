package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

type outboundMailRepository struct {
	db *gorm.DB
}

// NewOutboundMailRepository creates the gorm-backed mail outbox.
func NewOutboundMailRepository(db *gorm.DB) adapter.MailOutbox {
	return &outboundMailRepository{db: db}
}

func (r *outboundMailRepository) Enqueue(ctx context.Context, mail *entity.OutboundMail) error {
	if err := r.db.WithContext(ctx).Create(model.OutboundMailFromEntity(mail)).Error; err != nil {
		return domainerror.NewMailError(domainerror.ErrCodeMailEnqueue, "failed to enqueue mail", err)
	}
	return nil
}

// ClaimDue reads candidates, then takes each one with an update that repeats
// the due condition. Claiming pushes the deadline past now, so a row another
// dispatcher took in between no longer matches and is skipped.
func (r *outboundMailRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboundMail, error) {
	now = now.UTC()
	due := []string{string(entity.MailQueued), string(entity.MailSending)}

	var rows []model.OutboundMailModel
	err := r.db.WithContext(ctx).
		Where("state IN ? AND next_attempt_at <= ?", due, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]*entity.OutboundMail, 0, len(rows))
	for i := range rows {
		mail := rows[i].ToEntity()
		mail.Claim(now)

		res := r.db.WithContext(ctx).
			Model(&model.OutboundMailModel{}).
			Where("id = ? AND state IN ? AND next_attempt_at <= ?", mail.ID, due, now).
			Updates(map[string]any{
				"state":           string(mail.State),
				"next_attempt_at": mail.NextAttemptAt,
			})
		if res.Error != nil {
			return claimed, res.Error
		}
		if res.RowsAffected == 1 {
			claimed = append(claimed, mail)
		}
	}
	return claimed, nil
}

func (r *outboundMailRepository) Save(ctx context.Context, mail *entity.OutboundMail) error {
	return r.db.WithContext(ctx).Save(model.OutboundMailFromEntity(mail)).Error
}

func (r *outboundMailRepository) PurgeDelivered(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("state = ? AND delivered_at < ?", string(entity.MailDelivered), before.UTC()).
		Delete(&model.OutboundMailModel{})
	return res.RowsAffected, res.Error
}
