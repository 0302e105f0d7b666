package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// GetProfileUseCase loads the signed-in account.
type GetProfileUseCase struct {
	userRepo adapter.UserRepository
}

func NewGetProfileUseCase(userRepo adapter.UserRepository) *GetProfileUseCase {
	return &GetProfileUseCase{userRepo: userRepo}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, accountLookupError(err)
	}
	return user, nil
}

// accountLookupError turns a missing account into a coded error; a token can
// outlive the account it was issued for.
func accountLookupError(err error) error {
	if errors.Is(err, domainerror.ErrUserNotFound) {
		return domainerror.NewAuthError(domainerror.ErrCodeUserNotFound, "user not found", err)
	}
	return fmt.Errorf("failed to load user: %w", err)
}
