package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// GuestMigrationModel is the per-account migration marker. The unique
// user_id index is what serializes concurrent migrations.
type GuestMigrationModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	DeviceID           string     `gorm:"type:varchar(64);not null"`
	Status             string     `gorm:"type:varchar(20);not null"`
	CategoriesMigrated int        `gorm:"not null;default:0"`
	EntriesMigrated    int        `gorm:"not null;default:0"`
	StartedAt          time.Time  `gorm:"not null"`
	CompletedAt        *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for the GuestMigrationModel.
func (GuestMigrationModel) TableName() string {
	return "guest_migrations"
}

// ToEntity converts a GuestMigrationModel to a domain GuestMigration entity.
func (m *GuestMigrationModel) ToEntity() *entity.GuestMigration {
	return &entity.GuestMigration{
		ID:                 m.ID,
		UserID:             m.UserID,
		DeviceID:           m.DeviceID,
		Status:             entity.MigrationStatus(m.Status),
		CategoriesMigrated: m.CategoriesMigrated,
		EntriesMigrated:    m.EntriesMigrated,
		StartedAt:          m.StartedAt,
		CompletedAt:        m.CompletedAt,
	}
}
