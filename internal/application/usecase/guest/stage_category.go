package guest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/application/usecase/category"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// StageCategoryInput represents the input for creating a category on a guest device.
type StageCategoryInput struct {
	DeviceID string
	Name     string
	Emoji    string
	Color    string
}

// StageCategoryOutput represents the staged category.
type StageCategoryOutput struct {
	Category entity.StagedCategory
}

// StageCategoryUseCase appends a category to the device's staging area.
type StageCategoryUseCase struct {
	staging adapter.GuestStaging
	now     func() time.Time
}

// NewStageCategoryUseCase creates a new StageCategoryUseCase instance.
func NewStageCategoryUseCase(staging adapter.GuestStaging) *StageCategoryUseCase {
	return &StageCategoryUseCase{
		staging: staging,
		now:     time.Now,
	}
}

// Execute performs the staging.
func (uc *StageCategoryUseCase) Execute(ctx context.Context, input StageCategoryInput) (*StageCategoryOutput, error) {
	if err := ValidateDeviceID(input.DeviceID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := category.ValidateFields(name, input.Emoji, input.Color); err != nil {
		return nil, err
	}

	staged, err := uc.staging.LoadCategories(ctx, input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged categories: %w", err)
	}

	for _, c := range entity.DefaultCategories() {
		if strings.EqualFold(c.Name, name) {
			return nil, nameTaken()
		}
	}
	for _, c := range staged {
		if strings.EqualFold(c.Name, name) {
			return nil, nameTaken()
		}
	}

	now := uc.now().UTC()
	sc := entity.StagedCategory{
		LocalID:   nextLocalID(now, func(id valueobject.LocalID) bool { return hasCategory(staged, id) }),
		Name:      name,
		Emoji:     input.Emoji,
		Color:     input.Color,
		CreatedAt: now,
	}

	if err := uc.staging.SaveCategories(ctx, input.DeviceID, append(staged, sc)); err != nil {
		return nil, fmt.Errorf("failed to save staged categories: %w", err)
	}

	return &StageCategoryOutput{Category: sc}, nil
}

func nameTaken() error {
	return domainerror.NewCategoryError(
		domainerror.ErrCodeCategoryNameExists,
		"a category with this name already exists",
		domainerror.ErrCategoryNameExists,
	)
}

func hasCategory(staged []entity.StagedCategory, id valueobject.LocalID) bool {
	for _, c := range staged {
		if c.LocalID == id {
			return true
		}
	}
	return false
}

// nextLocalID derives a millisecond id from now, bumping it until unused.
func nextLocalID(now time.Time, taken func(valueobject.LocalID) bool) valueobject.LocalID {
	ms := now.UnixMilli()
	for {
		id := valueobject.NewLocalID(ms)
		if !taken(id) {
			return id
		}
		ms++
	}
}
