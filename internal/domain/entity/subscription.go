package entity

import (
	"time"

	"github.com/google/uuid"
)

// EntitlementStatus labels the state of the Pro entitlement.
type EntitlementStatus string

const (
	EntitlementStatusActive    EntitlementStatus = "active"
	EntitlementStatusCancelled EntitlementStatus = "cancelled"
	EntitlementStatusExpired   EntitlementStatus = "expired"
	EntitlementStatusNone      EntitlementStatus = "none"
	EntitlementStatusGuest     EntitlementStatus = "guest"
)

// EntitlementSnapshot is the derived "is Pro" triple.
type EntitlementSnapshot struct {
	IsPro     bool
	Status    EntitlementStatus
	ExpiresAt *time.Time
}

// GuestSnapshot is the snapshot for unauthenticated sessions.
func GuestSnapshot() EntitlementSnapshot {
	return EntitlementSnapshot{IsPro: false, Status: EntitlementStatusGuest}
}

// NoEntitlementSnapshot is the snapshot for accounts that never subscribed.
func NoEntitlementSnapshot() EntitlementSnapshot {
	return EntitlementSnapshot{IsPro: false, Status: EntitlementStatusNone}
}

// At applies the expiry-vs-now comparison: a Pro snapshot whose expiry has
// passed reads as expired.
func (s EntitlementSnapshot) At(now time.Time) EntitlementSnapshot {
	if s.IsPro && s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
		return EntitlementSnapshot{
			IsPro:     false,
			Status:    EntitlementStatusExpired,
			ExpiresAt: s.ExpiresAt,
		}
	}
	return s
}

// Subscription is the persisted entitlement record, one per account.
type Subscription struct {
	UserID            uuid.UUID
	IsPro             bool
	Status            EntitlementStatus
	ExpiresAt         *time.Time
	EntitlementID     string
	BillingCustomerID string
	SyncedAt          time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSubscription builds a subscription record from a derived snapshot.
func NewSubscription(userID uuid.UUID, snapshot EntitlementSnapshot, entitlementID, customerID string, syncedAt time.Time) *Subscription {
	return &Subscription{
		UserID:            userID,
		IsPro:             snapshot.IsPro,
		Status:            snapshot.Status,
		ExpiresAt:         snapshot.ExpiresAt,
		EntitlementID:     entitlementID,
		BillingCustomerID: customerID,
		SyncedAt:          syncedAt,
		CreatedAt:         syncedAt,
		UpdatedAt:         syncedAt,
	}
}

// Snapshot returns the stored triple.
func (s *Subscription) Snapshot() EntitlementSnapshot {
	return EntitlementSnapshot{
		IsPro:     s.IsPro,
		Status:    s.Status,
		ExpiresAt: s.ExpiresAt,
	}
}

// CachedEntitlement is the device-local copy of a snapshot together with
// the account it belongs to.
type CachedEntitlement struct {
	OwnerID  uuid.UUID
	Snapshot EntitlementSnapshot
	CachedAt time.Time
}

// FreshFor reports whether the cache belongs to userID and is younger than ttl.
func (c *CachedEntitlement) FreshFor(userID uuid.UUID, now time.Time, ttl time.Duration) bool {
	if c == nil || c.OwnerID != userID {
		return false
	}
	return now.Sub(c.CachedAt) < ttl
}
