// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// LoginUserInput represents the input for user login. DeviceID is the
// already validated device the app signs in from, possibly empty.
type LoginUserInput struct {
	Email    string
	Password string
	DeviceID string
}

// SignedIn is the result shared by login and registration.
type SignedIn struct {
	Tokens  *adapter.TokenPair
	User    *entity.User
	Session *entity.Session
}

// LoginUserUseCase checks credentials and opens a device-bound session.
type LoginUserUseCase struct {
	userRepo     adapter.UserRepository
	hasher       adapter.PasswordHasher
	tokenService adapter.TokenService
}

// NewLoginUserUseCase creates a new LoginUserUseCase instance.
func NewLoginUserUseCase(
	userRepo adapter.UserRepository,
	hasher adapter.PasswordHasher,
	tokenService adapter.TokenService,
) *LoginUserUseCase {
	return &LoginUserUseCase{
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

// Execute performs the user login. Unknown emails and wrong passwords share
// one error so accounts cannot be probed.
func (uc *LoginUserUseCase) Execute(ctx context.Context, input LoginUserInput) (*SignedIn, error) {
	badCredentials := domainerror.NewAuthError(
		domainerror.ErrCodeInvalidCredentials,
		"invalid email or password",
		domainerror.ErrInvalidCredentials,
	)

	user, err := uc.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, badCredentials
	}
	if !uc.hasher.Check(user.PasswordHash, input.Password) {
		return nil, badCredentials
	}
	if uc.hasher.Outdated(user.PasswordHash) {
		uc.rehash(ctx, user, input.Password)
	}

	return openSession(ctx, uc.tokenService, user, input.DeviceID)
}

// rehash replaces a hash made with an older cost. Failure only costs the
// upgrade, never the sign-in.
func (uc *LoginUserUseCase) rehash(ctx context.Context, user *entity.User, password string) {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		slog.Warn("Failed to rehash password", "userID", user.ID, "error", err)
		return
	}
	if err := uc.userRepo.SetPasswordHash(ctx, user.ID, hash, time.Now().UTC()); err != nil {
		slog.Warn("Failed to store rehashed password", "userID", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
}

// openSession issues tokens bound to the user and device.
func openSession(ctx context.Context, tokens adapter.TokenService, user *entity.User, deviceID string) (*SignedIn, error) {
	session := entity.NewSession(user.ID, deviceID)
	pair, err := tokens.IssueTokens(ctx, session, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return &SignedIn{
		Tokens:  pair,
		User:    user,
		Session: session,
	}, nil
}
