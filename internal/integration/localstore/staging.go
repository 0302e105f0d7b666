package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// Logical keys, one set per device.
const (
	keyStagedEntries    = "staged_entries"
	keyStagedCategories = "staged_categories"
	keyProFlag          = "pro_flag"
	keyProOwner         = "pro_owner"
)

func deviceKey(deviceID, name string) string {
	return "device:" + deviceID + ":" + name
}

// proFlag is the JSON stored under the pro_flag key.
type proFlag struct {
	IsPro     bool                     `json:"is_pro"`
	Status    entity.EntitlementStatus `json:"status"`
	ExpiresAt *time.Time               `json:"expires_at"`
	CachedAt  time.Time                `json:"cached_at"`
}

// guestStaging implements adapter.GuestStaging on top of a LocalStore.
type guestStaging struct {
	store adapter.LocalStore
}

// NewGuestStaging creates the typed staging view over store.
func NewGuestStaging(store adapter.LocalStore) adapter.GuestStaging {
	return &guestStaging{store: store}
}

func (g *guestStaging) LoadCategories(ctx context.Context, deviceID string) ([]entity.StagedCategory, error) {
	var out []entity.StagedCategory
	if err := g.load(ctx, deviceKey(deviceID, keyStagedCategories), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *guestStaging) SaveCategories(ctx context.Context, deviceID string, categories []entity.StagedCategory) error {
	key := deviceKey(deviceID, keyStagedCategories)
	if len(categories) == 0 {
		return g.store.Remove(ctx, key)
	}
	return g.save(ctx, key, categories)
}

func (g *guestStaging) ClearCategories(ctx context.Context, deviceID string) error {
	return g.store.Remove(ctx, deviceKey(deviceID, keyStagedCategories))
}

func (g *guestStaging) LoadEntries(ctx context.Context, deviceID string) ([]entity.StagedEntry, error) {
	var out []entity.StagedEntry
	if err := g.load(ctx, deviceKey(deviceID, keyStagedEntries), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *guestStaging) SaveEntries(ctx context.Context, deviceID string, entries []entity.StagedEntry) error {
	key := deviceKey(deviceID, keyStagedEntries)
	if len(entries) == 0 {
		return g.store.Remove(ctx, key)
	}
	return g.save(ctx, key, entries)
}

func (g *guestStaging) ClearEntries(ctx context.Context, deviceID string) error {
	return g.store.Remove(ctx, deviceKey(deviceID, keyStagedEntries))
}

// LoadEntitlement returns nil unless both the flag and the owner are present.
func (g *guestStaging) LoadEntitlement(ctx context.Context, deviceID string) (*entity.CachedEntitlement, error) {
	owner, found, err := g.store.Get(ctx, deviceKey(deviceID, keyProOwner))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	ownerID, err := uuid.Parse(owner)
	if err != nil {
		return nil, corrupt(keyProOwner, err)
	}

	var flag proFlag
	raw, found, err := g.store.Get(ctx, deviceKey(deviceID, keyProFlag))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &flag); err != nil {
		return nil, corrupt(keyProFlag, err)
	}

	return &entity.CachedEntitlement{
		OwnerID: ownerID,
		Snapshot: entity.EntitlementSnapshot{
			IsPro:     flag.IsPro,
			Status:    flag.Status,
			ExpiresAt: flag.ExpiresAt,
		},
		CachedAt: flag.CachedAt,
	}, nil
}

// SaveEntitlement drops the owner, writes the flag, then writes the new
// owner. A concurrent LoadEntitlement sees either the previous pair, no
// entitlement, or the new pair, never one account's owner with another's flag.
func (g *guestStaging) SaveEntitlement(ctx context.Context, deviceID string, cached *entity.CachedEntitlement) error {
	flag := proFlag{
		IsPro:     cached.Snapshot.IsPro,
		Status:    cached.Snapshot.Status,
		ExpiresAt: cached.Snapshot.ExpiresAt,
		CachedAt:  cached.CachedAt.UTC(),
	}
	ownerKey := deviceKey(deviceID, keyProOwner)
	if err := g.store.Remove(ctx, ownerKey); err != nil {
		return err
	}
	if err := g.save(ctx, deviceKey(deviceID, keyProFlag), flag); err != nil {
		return err
	}
	return g.store.Set(ctx, ownerKey, cached.OwnerID.String())
}

func (g *guestStaging) ClearEntitlement(ctx context.Context, deviceID string) error {
	if err := g.store.Remove(ctx, deviceKey(deviceID, keyProOwner)); err != nil {
		return err
	}
	return g.store.Remove(ctx, deviceKey(deviceID, keyProFlag))
}

func (g *guestStaging) load(ctx context.Context, key string, dst any) error {
	raw, found, err := g.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !found || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return corrupt(key, err)
	}
	return nil
}

func (g *guestStaging) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return g.store.Set(ctx, key, string(data))
}

func corrupt(key string, err error) error {
	return domainerror.NewGuestError(
		domainerror.ErrCodeCorruptStagedData,
		fmt.Sprintf("cannot decode %s", key),
		fmt.Errorf("%w: %v", domainerror.ErrCorruptStagedData, err),
	)
}
