package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// DefaultCacheTTL is how long a device-cached entitlement is trusted.
const DefaultCacheTTL = 5 * time.Minute

// FetchEntitlementInput represents the input for reading the entitlement.
type FetchEntitlementInput struct {
	Session *entity.Session
}

// FetchEntitlementOutput is the current entitlement as of now.
type FetchEntitlementOutput struct {
	Snapshot  entity.EntitlementSnapshot
	FromCache bool
}

// FetchEntitlementStatusUseCase reads the persisted entitlement without
// calling the billing provider, preferring the device cache when it is fresh
// and belongs to the same account.
type FetchEntitlementStatusUseCase struct {
	subscriptionRepo adapter.SubscriptionRepository
	staging          adapter.GuestStaging
	metrics          adapter.SyncMetrics
	cacheTTL         time.Duration
	now              func() time.Time
}

// NewFetchEntitlementStatusUseCase creates a new FetchEntitlementStatusUseCase instance.
func NewFetchEntitlementStatusUseCase(
	subscriptionRepo adapter.SubscriptionRepository,
	staging adapter.GuestStaging,
	metrics adapter.SyncMetrics,
	cacheTTL time.Duration,
) *FetchEntitlementStatusUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &FetchEntitlementStatusUseCase{
		subscriptionRepo: subscriptionRepo,
		staging:          staging,
		metrics:          metrics,
		cacheTTL:         cacheTTL,
		now:              time.Now,
	}
}

// Execute returns the entitlement snapshot with expiry applied.
func (uc *FetchEntitlementStatusUseCase) Execute(ctx context.Context, input FetchEntitlementInput) (*FetchEntitlementOutput, error) {
	session := input.Session
	if !session.IsAuthenticated() {
		return &FetchEntitlementOutput{Snapshot: entity.GuestSnapshot()}, nil
	}

	now := uc.now().UTC()
	useCache := session.HasDevice() && uc.staging != nil

	if useCache {
		cached, err := uc.staging.LoadEntitlement(ctx, session.DeviceID)
		if err != nil {
			slog.Warn("Ignoring unreadable entitlement cache", "deviceID", session.DeviceID, "error", err)
		}
		hit := cached.FreshFor(session.UserID, now, uc.cacheTTL)
		uc.recordLookup(hit)
		if hit {
			return &FetchEntitlementOutput{
				Snapshot:  cached.Snapshot.At(now),
				FromCache: true,
			}, nil
		}
	}

	snapshot := entity.NoEntitlementSnapshot()
	record, err := uc.subscriptionRepo.FindByUserID(ctx, session.UserID)
	switch {
	case err == nil:
		snapshot = record.Snapshot()
	case errors.Is(err, domainerror.ErrSubscriptionNotFound):
	default:
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if useCache {
		cached := &entity.CachedEntitlement{
			OwnerID:  session.UserID,
			Snapshot: snapshot,
			CachedAt: now,
		}
		if err := uc.staging.SaveEntitlement(ctx, session.DeviceID, cached); err != nil {
			slog.Warn("Failed to cache entitlement on device", "deviceID", session.DeviceID, "error", err)
		}
	}

	return &FetchEntitlementOutput{
		Snapshot: snapshot.At(now),
	}, nil
}

func (uc *FetchEntitlementStatusUseCase) recordLookup(hit bool) {
	if uc.metrics != nil {
		uc.metrics.EntitlementCacheLookup(hit)
	}
}
