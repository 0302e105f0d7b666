package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// RegisterUserInput represents the input for user registration.
type RegisterUserInput struct {
	Email         string
	Name          string
	Password      string
	Timezone      string
	TermsAccepted bool
	DeviceID      string
}

// RegisterUserUseCase creates an account and signs it in on the calling device.
type RegisterUserUseCase struct {
	userRepo     adapter.UserRepository
	hasher       adapter.PasswordHasher
	tokenService adapter.TokenService
	now          func() time.Time
}

// NewRegisterUserUseCase creates a new RegisterUserUseCase instance.
func NewRegisterUserUseCase(
	userRepo adapter.UserRepository,
	hasher adapter.PasswordHasher,
	tokenService adapter.TokenService,
) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		now:          time.Now,
	}
}

// Execute performs the user registration.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, input RegisterUserInput) (*SignedIn, error) {
	email, err := uc.validate(input)
	if err != nil {
		return nil, err
	}

	taken, err := uc.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if taken {
		return nil, emailTaken()
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entity.NewUser(email, strings.TrimSpace(input.Name), hash, uc.now().UTC())
	if input.Timezone != "" {
		user.Timezone = input.Timezone
	}
	err = uc.userRepo.Create(ctx, user)
	switch {
	case errors.Is(err, domainerror.ErrEmailAlreadyExists):
		// Lost a race with a concurrent registration.
		return nil, emailTaken()
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return openSession(ctx, uc.tokenService, user, input.DeviceID)
}

// validate returns the normalized email or the first rule the input breaks.
func (uc *RegisterUserUseCase) validate(input RegisterUserInput) (string, error) {
	if !input.TermsAccepted {
		return "", domainerror.NewAuthError(
			domainerror.ErrCodeTermsNotAccepted,
			"terms of service must be accepted",
			domainerror.ErrTermsNotAccepted,
		)
	}

	if strings.TrimSpace(input.Name) == "" {
		return "", domainerror.NewAuthError(
			domainerror.ErrCodeMissingFields,
			"name is required",
			nil,
		)
	}

	email := normalizeEmail(input.Email)
	if !isValidEmail(email) {
		return "", domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"invalid email format",
			domainerror.ErrInvalidEmail,
		)
	}

	if err := validateTimezone(input.Timezone); err != nil {
		return "", err
	}

	if err := valueobject.ValidatePassword(input.Password); err != nil {
		return "", domainerror.NewAuthError(domainerror.ErrCodeWeakPassword, err.Error(), domainerror.ErrWeakPassword)
	}

	return email, nil
}

func emailTaken() error {
	return domainerror.NewAuthError(
		domainerror.ErrCodeEmailExists,
		"email already exists",
		domainerror.ErrEmailAlreadyExists,
	)
}
