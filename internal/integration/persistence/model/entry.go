package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// EntryModel represents the entries table in the database.
// category_id carries no foreign key: it may point at a default category.
type EntryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_entries_user_created"`
	Text       string     `gorm:"type:varchar(500);not null"`
	Rating     int        `gorm:"type:smallint;not null"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"not null;index:idx_entries_user_created"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for the EntryModel.
func (EntryModel) TableName() string {
	return "entries"
}

// ToEntity converts an EntryModel to a domain Entry entity.
func (m *EntryModel) ToEntity() *entity.Entry {
	return &entity.Entry{
		ID:         m.ID,
		UserID:     m.UserID,
		Text:       m.Text,
		Rating:     m.Rating,
		CategoryID: m.CategoryID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// EntryFromEntity creates an EntryModel from a domain Entry entity.
func EntryFromEntity(e *entity.Entry) *EntryModel {
	return &EntryModel{
		ID:         e.ID,
		UserID:     e.UserID,
		Text:       e.Text,
		Rating:     e.Rating,
		CategoryID: e.CategoryID,
		CreatedAt:  e.CreatedAt.UTC(),
		UpdatedAt:  e.UpdatedAt.UTC(),
	}
}
