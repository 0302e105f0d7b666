package dto

import (
	"time"

	"github.com/annoylog/backend/internal/domain/entity"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// StartGuestSessionRequest lets a device re-announce an id it already holds.
type StartGuestSessionRequest struct {
	DeviceID string `json:"device_id,omitempty"`
}

// GuestSessionResponse returns the device id to send as X-Device-ID.
type GuestSessionResponse struct {
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StageCategoryRequest represents the request body for a guest category.
type StageCategoryRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Emoji string `json:"emoji,omitempty"`
	Color string `json:"color,omitempty"`
}

// StageEntryRequest represents the request body for a guest entry.
// Category accepts the tagged form or a legacy flat string.
type StageEntryRequest struct {
	Text     string                   `json:"text" binding:"required"`
	Rating   int                      `json:"rating" binding:"required"`
	Category *valueobject.CategoryRef `json:"category,omitempty"`
}

// StagedCategoryResponse is a category held on the device.
type StagedCategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StagedEntryResponse is an entry held on the device.
type StagedEntryResponse struct {
	ID        string                   `json:"id"`
	Text      string                   `json:"text"`
	Rating    int                      `json:"rating"`
	Category  *valueobject.CategoryRef `json:"category,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// StagedDataResponse lists everything staged on a device.
type StagedDataResponse struct {
	Categories []StagedCategoryResponse `json:"categories"`
	Entries    []StagedEntryResponse    `json:"entries"`
}

// ToStagedCategoryResponse converts a staged category to a DTO.
func ToStagedCategoryResponse(c entity.StagedCategory) StagedCategoryResponse {
	return StagedCategoryResponse{
		ID:        c.LocalID.String(),
		Name:      c.Name,
		Emoji:     c.Emoji,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}

// ToStagedEntryResponse converts a staged entry to a DTO.
func ToStagedEntryResponse(e entity.StagedEntry) StagedEntryResponse {
	return StagedEntryResponse{
		ID:        e.LocalID.String(),
		Text:      e.Text,
		Rating:    e.Rating,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	}
}

// ToStagedDataResponse converts staged categories and entries to a DTO.
func ToStagedDataResponse(categories []entity.StagedCategory, entries []entity.StagedEntry) StagedDataResponse {
	out := StagedDataResponse{
		Categories: make([]StagedCategoryResponse, 0, len(categories)),
		Entries:    make([]StagedEntryResponse, 0, len(entries)),
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, ToStagedCategoryResponse(c))
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, ToStagedEntryResponse(e))
	}
	return out
}
