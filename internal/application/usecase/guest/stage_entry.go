package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/application/usecase/entry"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// StageEntryInput represents the input for logging an entry on a guest device.
type StageEntryInput struct {
	DeviceID string
	Text     string
	Rating   int
	Category *valueobject.CategoryRef
}

// StageEntryOutput represents the staged entry.
type StageEntryOutput struct {
	Entry entity.StagedEntry
}

// StageEntryUseCase appends an entry to the device's staging area.
type StageEntryUseCase struct {
	staging adapter.GuestStaging
	now     func() time.Time
}

// NewStageEntryUseCase creates a new StageEntryUseCase instance.
func NewStageEntryUseCase(staging adapter.GuestStaging) *StageEntryUseCase {
	return &StageEntryUseCase{
		staging: staging,
		now:     time.Now,
	}
}

// Execute performs the staging. Category references are normalized to
// default or user kinds before they are stored.
func (uc *StageEntryUseCase) Execute(ctx context.Context, input StageEntryInput) (*StageEntryOutput, error) {
	if err := ValidateDeviceID(input.DeviceID); err != nil {
		return nil, err
	}
	if err := entry.ValidateContent(input.Text, input.Rating); err != nil {
		return nil, err
	}

	ref, err := uc.normalizeRef(ctx, input.DeviceID, input.Category)
	if err != nil {
		return nil, err
	}

	staged, err := uc.staging.LoadEntries(ctx, input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged entries: %w", err)
	}

	now := uc.now().UTC()
	se := entity.StagedEntry{
		LocalID: nextLocalID(now, func(id valueobject.LocalID) bool {
			for _, e := range staged {
				if e.LocalID == id {
					return true
				}
			}
			return false
		}),
		Text:      input.Text,
		Rating:    input.Rating,
		Category:  ref,
		CreatedAt: now,
	}

	if err := uc.staging.SaveEntries(ctx, input.DeviceID, append(staged, se)); err != nil {
		return nil, fmt.Errorf("failed to save staged entries: %w", err)
	}

	return &StageEntryOutput{Entry: se}, nil
}

func (uc *StageEntryUseCase) normalizeRef(ctx context.Context, deviceID string, ref *valueobject.CategoryRef) (*valueobject.CategoryRef, error) {
	if ref == nil {
		return nil, nil
	}

	if ref.Kind != valueobject.CategoryRefUser {
		if _, ok := entity.DefaultCategoryID(ref.ID); ok {
			r := valueobject.DefaultRef(ref.ID)
			return &r, nil
		}
	}
	if ref.Kind == valueobject.CategoryRefDefault {
		return nil, staleCategory(ref.ID)
	}

	categories, err := uc.staging.LoadCategories(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged categories: %w", err)
	}
	if !hasCategory(categories, ref.LocalID()) {
		return nil, staleCategory(ref.ID)
	}
	r := valueobject.UserRef(ref.LocalID())
	return &r, nil
}

func staleCategory(id string) error {
	return domainerror.NewGuestError(
		domainerror.ErrCodeStagedCategoryNotFound,
		fmt.Sprintf("category %q does not exist on this device", id),
		domainerror.ErrStagedCategoryNotFound,
	)
}
