package dto

import (
	"time"

	"github.com/annoylog/backend/internal/domain/entity"
)

// CreateEntryRequest represents the request body for logging an annoyance.
type CreateEntryRequest struct {
	Text       string  `json:"text" binding:"required"`
	Rating     int     `json:"rating" binding:"required"`
	CategoryID *string `json:"category_id,omitempty"`
}

// UpdateEntryRequest represents the request body for editing an entry.
// Sending "category_id": "" removes the category.
type UpdateEntryRequest struct {
	Text       *string `json:"text,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID            string            `json:"id"`
	Text          string            `json:"text"`
	Rating        int               `json:"rating"`
	CategoryID    *string           `json:"category_id"`
	Category      *CategoryResponse `json:"category,omitempty"`
	Locked        bool              `json:"locked"`
	EditableUntil time.Time         `json:"editable_until"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// EntryListResponse represents a page of entries.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ToEntryResponse converts an entry, and optionally its category, to a DTO.
func ToEntryResponse(e *entity.Entry, cat *entity.Category, now time.Time) EntryResponse {
	resp := EntryResponse{
		ID:            e.ID.String(),
		Text:          e.Text,
		Rating:        e.Rating,
		Locked:        e.IsLocked(now),
		EditableUntil: e.EditableUntil(),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.CategoryID != nil {
		id := e.CategoryID.String()
		resp.CategoryID = &id
	}
	if cat != nil {
		c := ToCategoryResponse(cat)
		resp.Category = &c
	}
	return resp
}
