package adapter

import "github.com/annoylog/backend/internal/domain/entity"

// SyncMetrics records outcomes of guest migrations and entitlement lookups.
type SyncMetrics interface {
	MigrationFinished(outcome entity.MigrationOutcome, reason entity.MigrationBlockReason)
	EntitlementSynced(status entity.EntitlementStatus, degraded bool)
	EntitlementCacheLookup(hit bool)
}
