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

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListEntriesInput represents the input for listing entries.
type ListEntriesInput struct {
	UserID     uuid.UUID
	From       *time.Time
	To         *time.Time
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// ListEntriesOutput represents one page of entries.
type ListEntriesOutput struct {
	Entries []*entity.Entry
	Total   int64
	Limit   int
	Offset  int
}

// ListEntriesUseCase handles entry listing logic.
type ListEntriesUseCase struct {
	entryRepo adapter.EntryRepository
}

// NewListEntriesUseCase creates a new ListEntriesUseCase instance.
func NewListEntriesUseCase(entryRepo adapter.EntryRepository) *ListEntriesUseCase {
	return &ListEntriesUseCase{
		entryRepo: entryRepo,
	}
}

// Execute performs the entry listing.
func (uc *ListEntriesUseCase) Execute(ctx context.Context, input ListEntriesInput) (*ListEntriesOutput, error) {
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, domainerror.NewEntryError(
			domainerror.ErrCodeInvalidEntryDateRange,
			"'to' must not be before 'from'",
			domainerror.ErrInvalidEntryDateRange,
		)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	entries, total, err := uc.entryRepo.List(ctx, entity.EntryFilter{
		UserID:     input.UserID,
		From:       input.From,
		To:         input.To,
		CategoryID: input.CategoryID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &ListEntriesOutput{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}
