// Package subscription reconciles billing entitlements with the persisted Pro status.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// DefaultEntitlementID is the billing entitlement that unlocks Pro.
const DefaultEntitlementID = "pro"

// SyncEntitlementInput represents the input for an entitlement sync.
type SyncEntitlementInput struct {
	Session *entity.Session
}

// SyncEntitlementOutput is the derived entitlement state. When Degraded is
// set the sync failed, Err holds the cause and the snapshot is non-Pro.
type SyncEntitlementOutput struct {
	Snapshot   entity.EntitlementSnapshot
	CustomerID string
	Degraded   bool
	Err        error
}

type syncResult struct {
	snapshot   entity.EntitlementSnapshot
	customerID string
}

// SyncEntitlementStatusUseCase pulls the live billing snapshot, derives the
// Pro triple and upserts it for the account.
type SyncEntitlementStatusUseCase struct {
	billing          adapter.BillingService
	subscriptionRepo adapter.SubscriptionRepository
	staging          adapter.GuestStaging
	metrics          adapter.SyncMetrics
	entitlementID    string
	group            singleflight.Group
	now              func() time.Time
}

// NewSyncEntitlementStatusUseCase creates a new SyncEntitlementStatusUseCase instance.
// staging and metrics may be nil.
func NewSyncEntitlementStatusUseCase(
	billing adapter.BillingService,
	subscriptionRepo adapter.SubscriptionRepository,
	staging adapter.GuestStaging,
	metrics adapter.SyncMetrics,
	entitlementID string,
) *SyncEntitlementStatusUseCase {
	if entitlementID == "" {
		entitlementID = DefaultEntitlementID
	}
	return &SyncEntitlementStatusUseCase{
		billing:          billing,
		subscriptionRepo: subscriptionRepo,
		staging:          staging,
		metrics:          metrics,
		entitlementID:    entitlementID,
		now:              time.Now,
	}
}

// Execute performs the sync. It never fails: errors degrade the result to
// non-Pro and are reported on the output.
func (uc *SyncEntitlementStatusUseCase) Execute(ctx context.Context, input SyncEntitlementInput) *SyncEntitlementOutput {
	session := input.Session
	if !session.IsAuthenticated() {
		return &SyncEntitlementOutput{Snapshot: entity.GuestSnapshot()}
	}

	userID := session.UserID
	// Callers joining an in-flight sync must not inherit the first caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := uc.group.Do(userID.String(), func() (any, error) {
		return uc.sync(shared, userID)
	})
	if err != nil {
		slog.Error("Entitlement sync failed, treating account as non-Pro", "userID", userID, "error", err)
		uc.record(entity.EntitlementStatusNone, true)
		return &SyncEntitlementOutput{
			Snapshot: entity.NoEntitlementSnapshot(),
			Degraded: true,
			Err:      err,
		}
	}

	res := v.(syncResult)
	if session.HasDevice() && uc.staging != nil {
		cached := &entity.CachedEntitlement{
			OwnerID:  userID,
			Snapshot: res.snapshot,
			CachedAt: uc.now().UTC(),
		}
		if err := uc.staging.SaveEntitlement(ctx, session.DeviceID, cached); err != nil {
			slog.Warn("Failed to cache entitlement on device", "userID", userID, "deviceID", session.DeviceID, "error", err)
		}
	}

	uc.record(res.snapshot.Status, false)

	return &SyncEntitlementOutput{
		Snapshot:   res.snapshot,
		CustomerID: res.customerID,
	}
}

func (uc *SyncEntitlementStatusUseCase) sync(ctx context.Context, userID uuid.UUID) (syncResult, error) {
	info, err := uc.billing.GetCustomerInfo(ctx, userID.String())
	switch {
	case errors.Is(err, domainerror.ErrBillingCustomerNotFound):
		// Never purchased anything.
		info = &entity.CustomerInfo{}
	case err != nil:
		return syncResult{}, fmt.Errorf("failed to fetch billing customer info: %w", err)
	}

	snapshot := info.DeriveSnapshot(uc.entitlementID)
	record := entity.NewSubscription(userID, snapshot, uc.entitlementID, info.CustomerID, uc.now().UTC())
	if err := uc.subscriptionRepo.Upsert(ctx, record); err != nil {
		return syncResult{}, fmt.Errorf("failed to persist subscription status: %w", err)
	}

	slog.Info("Entitlement synced",
		"userID", userID,
		"isPro", snapshot.IsPro,
		"status", snapshot.Status,
	)

	return syncResult{snapshot: snapshot, customerID: info.CustomerID}, nil
}

func (uc *SyncEntitlementStatusUseCase) record(status entity.EntitlementStatus, degraded bool) {
	if uc.metrics != nil {
		uc.metrics.EntitlementSynced(status, degraded)
	}
}
