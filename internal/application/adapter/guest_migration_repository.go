package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// GuestMigrationRepository stores the per-account migration marker.
type GuestMigrationRepository interface {
	// Claim marks a migration as in progress for userID. It returns false when
	// another migration holds an in-progress marker started after staleBefore.
	Claim(ctx context.Context, userID uuid.UUID, deviceID string, now, staleBefore time.Time) (bool, error)

	// Finish records the final status and counts of the claimed migration.
	Finish(ctx context.Context, userID uuid.UUID, status entity.MigrationStatus, categories, entries int, now time.Time) error

	// FindByUserID returns the marker for the user, or nil when none exists.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.GuestMigration, error)

	// DeleteByUserID removes the marker.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
