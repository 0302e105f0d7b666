package entity

import (
	"time"

	"github.com/google/uuid"
)

// MigrationStatus is the state of the server-side migration marker.
type MigrationStatus string

const (
	MigrationStatusInProgress MigrationStatus = "in_progress"
	MigrationStatusCompleted  MigrationStatus = "completed"
	MigrationStatusPartial    MigrationStatus = "partial"
	// MigrationStatusAborted releases a claim that copied nothing.
	MigrationStatusAborted    MigrationStatus = "aborted"
)

// GuestMigration records that guest data was (or is being) copied into an account.
type GuestMigration struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	DeviceID           string
	Status             MigrationStatus
	CategoriesMigrated int
	EntriesMigrated    int
	StartedAt          time.Time
	CompletedAt        *time.Time
}

// MigrationOutcome tags the result of a guest migration attempt.
type MigrationOutcome string

const (
	// MigrationOutcomeMigrated means staged data was copied into the account.
	MigrationOutcomeMigrated MigrationOutcome = "migrated"
	// MigrationOutcomeNothingToMigrate means the device had no staged data.
	MigrationOutcomeNothingToMigrate MigrationOutcome = "nothing_to_migrate"
	// MigrationOutcomeBlocked means policy refused the copy; data stays on the device.
	MigrationOutcomeBlocked MigrationOutcome = "blocked"
	// MigrationOutcomeFailed means an unexpected backend error stopped the attempt.
	MigrationOutcomeFailed MigrationOutcome = "failed"
)

// MigrationBlockReason explains a blocked outcome.
type MigrationBlockReason string

const (
	BlockReasonAccountHasData      MigrationBlockReason = "account_has_data"
	BlockReasonMigrationInProgress MigrationBlockReason = "migration_in_progress"
)
