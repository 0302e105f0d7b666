package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

// subscriptionRepository implements the adapter.SubscriptionRepository interface.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance.
func NewSubscriptionRepository(db *gorm.DB) adapter.SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

// Upsert inserts the record or updates the existing row for the same user.
// created_at of an existing row is preserved.
func (r *subscriptionRepository) Upsert(ctx context.Context, subscription *entity.Subscription) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"is_pro",
				"status",
				"expires_at",
				"entitlement_id",
				"billing_customer_id",
				"synced_at",
				"updated_at",
			}),
		}).
		Create(model.SubscriptionFromEntity(subscription))
	return result.Error
}

// FindByUserID returns the user's record or domainerror.ErrSubscriptionNotFound.
func (r *subscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error) {
	var row model.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, domainerror.ErrSubscriptionNotFound, nil)
	}
	return row.ToEntity(), nil
}

// DeleteByUserID removes the user's record.
func (r *subscriptionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SubscriptionModel{}, "user_id = ?", userID).Error
}
