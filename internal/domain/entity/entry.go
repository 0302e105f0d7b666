package entity

import (
	"time"

	"github.com/google/uuid"
)

// EntryEditWindow is how long after creation an entry may still be edited.
const EntryEditWindow = 72 * time.Hour

// Entry is a single logged annoyance.
type Entry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Text       string
	Rating     int
	CategoryID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewEntry creates an Entry. A zero createdAt means now.
func NewEntry(userID uuid.UUID, text string, rating int, categoryID *uuid.UUID, createdAt time.Time) *Entry {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	return &Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Text:       text,
		Rating:     rating,
		CategoryID: categoryID,
		CreatedAt:  createdAt.UTC(),
		UpdatedAt:  now,
	}
}

// IsLocked reports whether the edit window has closed at now.
func (e *Entry) IsLocked(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(EntryEditWindow))
}

// EditableUntil returns the instant the entry becomes immutable.
func (e *Entry) EditableUntil() time.Time {
	return e.CreatedAt.Add(EntryEditWindow)
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	UserID     uuid.UUID
	From       *time.Time
	To         *time.Time
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}
