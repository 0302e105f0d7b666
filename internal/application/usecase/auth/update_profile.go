package auth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

const maxNameLength = 100

// UpdateProfileInput is a partial edit; nil fields stay as stored.
type UpdateProfileInput struct {
	UserID   uuid.UUID
	Name     *string
	Timezone *string
}

// UpdateProfileUseCase edits the display name and the timezone that day
// boundaries in streaks and calendars follow.
type UpdateProfileUseCase struct {
	userRepo adapter.UserRepository
	now      func() time.Time
}

func NewUpdateProfileUseCase(userRepo adapter.UserRepository) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userRepo: userRepo, now: time.Now}
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, input UpdateProfileInput) (*entity.User, error) {
	change, err := profileChange(input)
	if err != nil {
		return nil, err
	}
	if change.Name == nil && change.Timezone == nil {
		return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidProfile, "nothing to update", nil)
	}

	user, err := uc.userRepo.UpdateProfile(ctx, input.UserID, change, uc.now().UTC())
	if err != nil {
		return nil, accountLookupError(err)
	}
	return user, nil
}

func profileChange(input UpdateProfileInput) (adapter.ProfileChange, error) {
	var change adapter.ProfileChange
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			return change, domainerror.NewAuthError(
				domainerror.ErrCodeInvalidProfile,
				"name must be between 1 and 100 characters",
				nil,
			)
		}
		change.Name = &name
	}
	if input.Timezone != nil {
		tz := strings.TrimSpace(*input.Timezone)
		if tz == "" {
			tz = entity.DefaultTimezone
		}
		if err := validateTimezone(tz); err != nil {
			return change, err
		}
		change.Timezone = &tz
	}
	return change, nil
}
