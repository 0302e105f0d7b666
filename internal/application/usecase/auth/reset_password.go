package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPasswordUseCase redeems a reset grant and signs the account out everywhere.
type ResetPasswordUseCase struct {
	users  adapter.UserRepository
	hasher adapter.PasswordHasher
	resets adapter.PasswordResetTokenService
	tokens adapter.TokenService
	now    func() time.Time
}

func NewResetPasswordUseCase(
	users adapter.UserRepository,
	hasher adapter.PasswordHasher,
	resets adapter.PasswordResetTokenService,
	tokens adapter.TokenService,
) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{users: users, hasher: hasher, resets: resets, tokens: tokens, now: time.Now}
}

// Execute checks the new password before redeeming the grant, so a rejected
// password leaves the link usable.
func (uc *ResetPasswordUseCase) Execute(ctx context.Context, input ResetPasswordInput) error {
	if err := valueobject.ValidatePassword(input.NewPassword); err != nil {
		return domainerror.NewAuthError(domainerror.ErrCodeWeakPassword, err.Error(), domainerror.ErrWeakPassword)
	}

	grant, err := uc.resets.ConsumeResetToken(ctx, input.Token)
	if err != nil {
		return redeemError(err)
	}

	hash, err := uc.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := uc.users.SetPasswordHash(ctx, grant.UserID, hash, uc.now().UTC()); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}

	// Sessions opened with the old password end here.
	if err := uc.tokens.RevokeUserTokens(ctx, grant.UserID); err != nil {
		slog.Error("Failed to revoke refresh tokens after password reset", "userID", grant.UserID, "error", err)
	}
	return nil
}

func redeemError(err error) error {
	switch {
	case errors.Is(err, domainerror.ErrExpiredResetToken):
		return domainerror.NewAuthError(domainerror.ErrCodeExpiredResetToken, "password reset token has expired", err)
	case errors.Is(err, domainerror.ErrInvalidResetToken):
		return domainerror.NewAuthError(domainerror.ErrCodeInvalidResetToken, "invalid password reset token", err)
	default:
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}
}
