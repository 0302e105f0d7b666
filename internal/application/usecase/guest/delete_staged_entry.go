package guest

import (
	"context"
	"fmt"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// DeleteStagedEntryInput represents the input for removing a staged entry.
type DeleteStagedEntryInput struct {
	DeviceID string
	LocalID  valueobject.LocalID
}

// DeleteStagedEntryUseCase removes one entry from the device's staging area.
type DeleteStagedEntryUseCase struct {
	staging adapter.GuestStaging
}

// NewDeleteStagedEntryUseCase creates a new DeleteStagedEntryUseCase instance.
func NewDeleteStagedEntryUseCase(staging adapter.GuestStaging) *DeleteStagedEntryUseCase {
	return &DeleteStagedEntryUseCase{staging: staging}
}

// Execute performs the removal.
func (uc *DeleteStagedEntryUseCase) Execute(ctx context.Context, input DeleteStagedEntryInput) error {
	if err := ValidateDeviceID(input.DeviceID); err != nil {
		return err
	}

	staged, err := uc.staging.LoadEntries(ctx, input.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to load staged entries: %w", err)
	}

	kept := make([]entity.StagedEntry, 0, len(staged))
	for _, e := range staged {
		if e.LocalID != input.LocalID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(staged) {
		return domainerror.NewGuestError(
			domainerror.ErrCodeStagedEntryNotFound,
			"staged entry not found",
			domainerror.ErrStagedEntryNotFound,
		)
	}

	if len(kept) == 0 {
		err = uc.staging.ClearEntries(ctx, input.DeviceID)
	} else {
		err = uc.staging.SaveEntries(ctx, input.DeviceID, kept)
	}
	if err != nil {
		return fmt.Errorf("failed to save staged entries: %w", err)
	}
	return nil
}
