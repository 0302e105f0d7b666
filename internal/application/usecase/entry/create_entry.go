package entry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
)

// CreateEntryInput represents the input for logging an annoyance.
type CreateEntryInput struct {
	UserID     uuid.UUID
	Text       string
	Rating     int
	CategoryID *uuid.UUID
}

// CreateEntryOutput represents the output of entry creation.
type CreateEntryOutput struct {
	Entry    *entity.Entry
	Category *entity.Category
}

// CreateEntryUseCase handles entry creation logic.
type CreateEntryUseCase struct {
	entryRepo    adapter.EntryRepository
	categoryRepo adapter.CategoryRepository
	now          func() time.Time
}

// NewCreateEntryUseCase creates a new CreateEntryUseCase instance.
func NewCreateEntryUseCase(entryRepo adapter.EntryRepository, categoryRepo adapter.CategoryRepository) *CreateEntryUseCase {
	return &CreateEntryUseCase{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// Execute performs the entry creation.
func (uc *CreateEntryUseCase) Execute(ctx context.Context, input CreateEntryInput) (*CreateEntryOutput, error) {
	if err := ValidateContent(input.Text, input.Rating); err != nil {
		return nil, err
	}

	category, err := checkCategory(ctx, uc.categoryRepo, input.UserID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	e := entity.NewEntry(input.UserID, input.Text, input.Rating, input.CategoryID, uc.now())
	if err := uc.entryRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return &CreateEntryOutput{
		Entry:    e,
		Category: category,
	}, nil
}
