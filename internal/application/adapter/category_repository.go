package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// CategoryRepository persists user-created categories. The built-in defaults
// live in entity and never pass through it.
type CategoryRepository interface {
	// Create and Update return domainerror.ErrCategoryNameExists when the
	// user already has the name.
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error

	// FindByID returns domainerror.ErrCategoryNotFound for unknown ids.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)

	ExistsByNameForUser(ctx context.Context, userID uuid.UUID, name string) (bool, error)
	// ExistsByUserID is an existence probe and must not load rows.
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
