package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// SubscriptionRepository persists the denormalized entitlement record per account.
type SubscriptionRepository interface {
	// Upsert inserts the record or updates the existing one for the same user.
	Upsert(ctx context.Context, subscription *entity.Subscription) error

	// FindByUserID returns the user's record or domainerror.ErrSubscriptionNotFound.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Subscription, error)

	// DeleteByUserID removes the user's record.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
