package entry

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
)

// DeleteEntryInput represents the input for entry deletion.
type DeleteEntryInput struct {
	EntryID uuid.UUID
	UserID  uuid.UUID
}

// DeleteEntryUseCase deletes an entry. Deletion is allowed after the edit window.
type DeleteEntryUseCase struct {
	entryRepo adapter.EntryRepository
}

// NewDeleteEntryUseCase creates a new DeleteEntryUseCase instance.
func NewDeleteEntryUseCase(entryRepo adapter.EntryRepository) *DeleteEntryUseCase {
	return &DeleteEntryUseCase{
		entryRepo: entryRepo,
	}
}

// Execute performs the entry deletion.
func (uc *DeleteEntryUseCase) Execute(ctx context.Context, input DeleteEntryInput) error {
	if _, err := loadOwnedEntry(ctx, uc.entryRepo, input.EntryID, input.UserID); err != nil {
		return err
	}

	if err := uc.entryRepo.Delete(ctx, input.EntryID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}
