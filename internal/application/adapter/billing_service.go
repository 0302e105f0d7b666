package adapter

import (
	"context"

	"github.com/annoylog/backend/internal/domain/entity"
)

// BillingService reads customer state from the subscription billing provider.
type BillingService interface {
	// GetCustomerInfo returns the live entitlement snapshot for appUserID.
	GetCustomerInfo(ctx context.Context, appUserID string) (*entity.CustomerInfo, error)
}
