package dto

import (
	"time"

	"github.com/annoylog/backend/internal/application/usecase/migration"
	"github.com/annoylog/backend/internal/application/usecase/session"
	"github.com/annoylog/backend/internal/application/usecase/subscription"
	"github.com/annoylog/backend/internal/domain/entity"
)

// EntitlementResponse is the Pro triple returned to clients.
type EntitlementResponse struct {
	IsPro     bool       `json:"is_pro"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
	Degraded  bool       `json:"degraded,omitempty"`
	FromCache bool       `json:"from_cache,omitempty"`
}

// MigrationResponse reports the guest migration run at session start.
type MigrationResponse struct {
	Outcome            string `json:"outcome"`
	Success            bool   `json:"success"`
	Synced             bool   `json:"synced"`
	Reason             string `json:"reason,omitempty"`
	Notice             string `json:"notice,omitempty"`
	Partial            bool   `json:"partial,omitempty"`
	CategoriesMigrated int    `json:"categories_migrated"`
	EntriesMigrated    int    `json:"entries_migrated"`
	CategoriesLeft     int    `json:"categories_left,omitempty"`
	EntriesLeft        int    `json:"entries_left,omitempty"`
}

// StartSessionRequest represents the body of POST /session/start.
type StartSessionRequest struct {
	DeviceID string `json:"device_id,omitempty"`
	Migrate  *bool  `json:"migrate,omitempty"`
}

// SessionResponse is returned by POST /session/start.
type SessionResponse struct {
	Migration   *MigrationResponse   `json:"migration,omitempty"`
	Entitlement *EntitlementResponse `json:"entitlement"`
}

// ToEntitlementResponse converts a snapshot to a DTO.
func ToEntitlementResponse(s entity.EntitlementSnapshot) *EntitlementResponse {
	return &EntitlementResponse{
		IsPro:     s.IsPro,
		Status:    string(s.Status),
		ExpiresAt: s.ExpiresAt,
	}
}

// FromSyncOutput converts the sync result to a DTO.
func FromSyncOutput(out *subscription.SyncEntitlementOutput) *EntitlementResponse {
	if out == nil {
		return nil
	}
	resp := ToEntitlementResponse(out.Snapshot)
	resp.Degraded = out.Degraded
	return resp
}

// FromFetchOutput converts the fetch result to a DTO.
func FromFetchOutput(out *subscription.FetchEntitlementOutput) *EntitlementResponse {
	resp := ToEntitlementResponse(out.Snapshot)
	resp.FromCache = out.FromCache
	return resp
}

// ToMigrationResponse converts a migration result to a DTO.
func ToMigrationResponse(out *migration.MigrateGuestDataOutput) *MigrationResponse {
	if out == nil {
		return nil
	}
	return &MigrationResponse{
		Outcome:            string(out.Outcome),
		Success:            out.Success,
		Synced:             out.Synced,
		Reason:             string(out.Reason),
		Notice:             out.Notice,
		Partial:            out.Partial,
		CategoriesMigrated: out.CategoriesMigrated,
		EntriesMigrated:    out.EntriesMigrated,
		CategoriesLeft:     out.CategoriesLeft,
		EntriesLeft:        out.EntriesLeft,
	}
}

// ToSessionResponse converts the session-start result to a DTO.
func ToSessionResponse(out *session.StartSessionOutput) SessionResponse {
	return SessionResponse{
		Migration:   ToMigrationResponse(out.Migration),
		Entitlement: FromSyncOutput(out.Entitlement),
	}
}
