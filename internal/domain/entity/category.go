// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is the color assigned when a user category has none.
const DefaultCategoryColor = "#6366F1"

// Category groups annoyance entries.
// Default categories have a zero UserID and are never stored.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Emoji     string
	Color     string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory creates a new user-owned Category.
func NewCategory(userID uuid.UUID, name, emoji, color string) *Category {
	now := time.Now().UTC()

	return &Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Emoji:     emoji,
		Color:     color,
		IsDefault: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// defaultCategory is one of the fixed categories every account sees.
type defaultCategory struct {
	key   string
	id    uuid.UUID
	name  string
	emoji string
	color string
}

var defaultCategories = []defaultCategory{
	{key: "work", id: uuid.MustParse("0a6e9b1c-7d2f-4c1e-9a01-000000000001"), name: "Work", emoji: "💼", color: "#F97316"},
	{key: "commute", id: uuid.MustParse("0a6e9b1c-7d2f-4c1e-9a01-000000000002"), name: "Commute", emoji: "🚗", color: "#EAB308"},
	{key: "people", id: uuid.MustParse("0a6e9b1c-7d2f-4c1e-9a01-000000000003"), name: "People", emoji: "🙄", color: "#EF4444"},
	{key: "tech", id: uuid.MustParse("0a6e9b1c-7d2f-4c1e-9a01-000000000004"), name: "Tech", emoji: "💻", color: "#3B82F6"},
	{key: "home", id: uuid.MustParse("0a6e9b1c-7d2f-4c1e-9a01-000000000005"), name: "Home", emoji: "🏠", color: "#10B981"},
	{key: "other", id: uuid.MustParse("0a6e9b1c-7d2f-4c1e-9a01-000000000006"), name: "Other", emoji: "🤷", color: "#6B7280"},
}

// epoch used as the creation time of default categories.
var defaultCategoryCreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultCategories returns the fixed default categories in display order.
func DefaultCategories() []*Category {
	out := make([]*Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		out = append(out, &Category{
			ID:        d.id,
			Name:      d.name,
			Emoji:     d.emoji,
			Color:     d.color,
			IsDefault: true,
			CreatedAt: defaultCategoryCreatedAt,
			UpdatedAt: defaultCategoryCreatedAt,
		})
	}
	return out
}

// DefaultCategoryID resolves a default category key to its fixed id.
func DefaultCategoryID(key string) (uuid.UUID, bool) {
	for _, d := range defaultCategories {
		if d.key == key {
			return d.id, true
		}
	}
	return uuid.Nil, false
}

// IsDefaultCategoryID reports whether id is one of the fixed default ids.
func IsDefaultCategoryID(id uuid.UUID) bool {
	for _, d := range defaultCategories {
		if d.id == id {
			return true
		}
	}
	return false
}

// FindDefaultCategory returns the default category with the given id.
func FindDefaultCategory(id uuid.UUID) (*Category, bool) {
	for _, c := range DefaultCategories() {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
