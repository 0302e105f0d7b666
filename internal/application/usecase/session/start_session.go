// Package session runs the work that follows a successful sign-in.
package session

import (
	"context"
	"log/slog"

	"github.com/annoylog/backend/internal/application/usecase/migration"
	"github.com/annoylog/backend/internal/application/usecase/subscription"
	"github.com/annoylog/backend/internal/domain/entity"
)

type guestMigrator interface {
	Execute(ctx context.Context, input migration.MigrateGuestDataInput) (*migration.MigrateGuestDataOutput, error)
}

type entitlementSyncer interface {
	Execute(ctx context.Context, input subscription.SyncEntitlementInput) *subscription.SyncEntitlementOutput
}

// StartSessionInput represents the input for session start.
type StartSessionInput struct {
	Session *entity.Session
	// Migrate is false for app-foreground calls, which only refresh the entitlement.
	Migrate bool
}

// StartSessionOutput carries both results. Migration is nil when it was not attempted.
type StartSessionOutput struct {
	Migration    *migration.MigrateGuestDataOutput
	MigrationErr error
	Entitlement  *subscription.SyncEntitlementOutput
}

// StartSessionUseCase migrates guest data and syncs the entitlement after
// sign-up, sign-in or app foregrounding. Failures never block the caller.
type StartSessionUseCase struct {
	migrator guestMigrator
	syncer   entitlementSyncer
}

// NewStartSessionUseCase creates a new StartSessionUseCase instance.
func NewStartSessionUseCase(
	migrator *migration.MigrateGuestDataUseCase,
	syncer *subscription.SyncEntitlementStatusUseCase,
) *StartSessionUseCase {
	return &StartSessionUseCase{
		migrator: migrator,
		syncer:   syncer,
	}
}

// Execute runs the migration (when requested and a device is known) and then the sync.
func (uc *StartSessionUseCase) Execute(ctx context.Context, input StartSessionInput) *StartSessionOutput {
	out := &StartSessionOutput{}

	if input.Migrate && input.Session.HasDevice() {
		result, err := uc.migrator.Execute(ctx, migration.MigrateGuestDataInput{Session: input.Session})
		if err != nil {
			slog.Error("Guest migration did not complete", "userID", input.Session.UserID, "error", err)
		}
		out.Migration = result
		out.MigrationErr = err
	}

	out.Entitlement = uc.syncer.Execute(ctx, subscription.SyncEntitlementInput{Session: input.Session})
	return out
}
