package guest

import (
	"context"
	"fmt"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
)

// ListStagedInput represents the input for listing a device's staged data.
type ListStagedInput struct {
	DeviceID string
}

// ListStagedOutput holds the staged categories and entries.
type ListStagedOutput struct {
	Categories []entity.StagedCategory
	Entries    []entity.StagedEntry
}

// ListStagedUseCase reads the device's staging area.
type ListStagedUseCase struct {
	staging adapter.GuestStaging
}

// NewListStagedUseCase creates a new ListStagedUseCase instance.
func NewListStagedUseCase(staging adapter.GuestStaging) *ListStagedUseCase {
	return &ListStagedUseCase{staging: staging}
}

// Execute performs the listing.
func (uc *ListStagedUseCase) Execute(ctx context.Context, input ListStagedInput) (*ListStagedOutput, error) {
	if err := ValidateDeviceID(input.DeviceID); err != nil {
		return nil, err
	}

	categories, err := uc.staging.LoadCategories(ctx, input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged categories: %w", err)
	}
	entries, err := uc.staging.LoadEntries(ctx, input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged entries: %w", err)
	}

	return &ListStagedOutput{
		Categories: categories,
		Entries:    entries,
	}, nil
}
