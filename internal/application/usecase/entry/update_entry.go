package entry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// UpdateEntryInput represents the input for entry update. Nil fields are unchanged.
type UpdateEntryInput struct {
	EntryID       uuid.UUID
	UserID        uuid.UUID
	Text          *string
	Rating        *int
	CategoryID    *uuid.UUID
	ClearCategory bool // Set to true to remove category
}

// UpdateEntryOutput represents the output of entry update.
type UpdateEntryOutput struct {
	Entry    *entity.Entry
	Category *entity.Category
}

// UpdateEntryUseCase edits an entry inside its 72-hour edit window.
type UpdateEntryUseCase struct {
	entryRepo    adapter.EntryRepository
	categoryRepo adapter.CategoryRepository
	now          func() time.Time
}

// NewUpdateEntryUseCase creates a new UpdateEntryUseCase instance.
func NewUpdateEntryUseCase(entryRepo adapter.EntryRepository, categoryRepo adapter.CategoryRepository) *UpdateEntryUseCase {
	return &UpdateEntryUseCase{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// Execute performs the entry update.
func (uc *UpdateEntryUseCase) Execute(ctx context.Context, input UpdateEntryInput) (*UpdateEntryOutput, error) {
	e, err := loadOwnedEntry(ctx, uc.entryRepo, input.EntryID, input.UserID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	if e.IsLocked(now) {
		return nil, domainerror.NewEntryError(
			domainerror.ErrCodeEntryLocked,
			fmt.Sprintf("entries can only be edited within %s of creation", entity.EntryEditWindow),
			domainerror.ErrEntryLocked,
		)
	}

	text := e.Text
	if input.Text != nil {
		text = *input.Text
	}
	rating := e.Rating
	if input.Rating != nil {
		rating = *input.Rating
	}
	if err := ValidateContent(text, rating); err != nil {
		return nil, err
	}

	categoryID := e.CategoryID
	switch {
	case input.ClearCategory:
		categoryID = nil
	case input.CategoryID != nil:
		categoryID = input.CategoryID
	}
	category, err := checkCategory(ctx, uc.categoryRepo, input.UserID, categoryID)
	if err != nil {
		return nil, err
	}

	e.Text = text
	e.Rating = rating
	e.CategoryID = categoryID
	e.UpdatedAt = now

	if err := uc.entryRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	return &UpdateEntryOutput{
		Entry:    e,
		Category: category,
	}, nil
}
