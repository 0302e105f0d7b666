package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
)

type DeleteCategoryInput struct {
	CategoryID uuid.UUID
	UserID     uuid.UUID
}

// DeleteCategoryUseCase removes a user category. Entries that pointed at it
// are kept and lose their category.
type DeleteCategoryUseCase struct {
	categories adapter.CategoryRepository
	entries    adapter.EntryRepository
}

func NewDeleteCategoryUseCase(categories adapter.CategoryRepository, entries adapter.EntryRepository) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{categories: categories, entries: entries}
}

// Execute returns how many entries were detached.
func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, input DeleteCategoryInput) (int64, error) {
	if _, err := loadOwnedCategory(ctx, uc.categories, input.CategoryID, input.UserID); err != nil {
		return 0, err
	}

	detached, err := uc.entries.ClearCategory(ctx, input.UserID, input.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to detach entries from category: %w", err)
	}
	if err := uc.categories.Delete(ctx, input.CategoryID); err != nil {
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}
	return detached, nil
}
