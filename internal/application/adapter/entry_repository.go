package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// EntryRepository defines the interface for entry persistence operations.
type EntryRepository interface {
	// Create inserts an entry, keeping its CreatedAt.
	Create(ctx context.Context, entry *entity.Entry) error

	// FindByID retrieves an entry by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error)

	// List returns entries matching the filter, newest first, and the total count.
	List(ctx context.Context, filter entity.EntryFilter) ([]*entity.Entry, int64, error)

	// ListBetween returns every entry of the user created in [from, to), oldest first.
	ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entity.Entry, error)

	// ListCreatedAt returns the creation instants of all of the user's entries, newest first.
	ListCreatedAt(ctx context.Context, userID uuid.UUID) ([]time.Time, error)

	// ExistsByUserID reports whether the user owns at least one entry.
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)

	// Update saves changes to an entry.
	Update(ctx context.Context, entry *entity.Entry) error

	// Delete removes an entry.
	Delete(ctx context.Context, id uuid.UUID) error

	// ClearCategory sets category_id to NULL on the user's entries pointing at
	// categoryID and reports how many it touched.
	ClearCategory(ctx context.Context, userID, categoryID uuid.UUID) (int64, error)

	// DeleteByUserID removes every entry owned by the user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
