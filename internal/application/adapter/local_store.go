package adapter

import (
	"context"

	"github.com/annoylog/backend/internal/domain/entity"
)

// LocalStore is a flat key to string store.
type LocalStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// GuestStaging is the typed, per-device view of the local store: staged
// entries, staged categories and the cached entitlement with its owner.
type GuestStaging interface {
	LoadCategories(ctx context.Context, deviceID string) ([]entity.StagedCategory, error)
	SaveCategories(ctx context.Context, deviceID string, categories []entity.StagedCategory) error
	ClearCategories(ctx context.Context, deviceID string) error

	LoadEntries(ctx context.Context, deviceID string) ([]entity.StagedEntry, error)
	SaveEntries(ctx context.Context, deviceID string, entries []entity.StagedEntry) error
	ClearEntries(ctx context.Context, deviceID string) error

	// LoadEntitlement returns nil when no cache is stored for the device.
	LoadEntitlement(ctx context.Context, deviceID string) (*entity.CachedEntitlement, error)
	SaveEntitlement(ctx context.Context, deviceID string, cached *entity.CachedEntitlement) error
	ClearEntitlement(ctx context.Context, deviceID string) error
}
