package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

// RefreshTokenUseCase rotates a refresh token. The new pair stays bound to
// the device of the old one, and each refresh token rotates at most once.
type RefreshTokenUseCase struct {
	tokens adapter.TokenService
}

func NewRefreshTokenUseCase(tokens adapter.TokenService) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{tokens: tokens}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*adapter.TokenPair, error) {
	claims, err := uc.tokens.ParseRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, refreshError(err)
	}

	// Revoking first makes a concurrent reuse of the same token lose here
	// instead of forking the session.
	if err := uc.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, refreshError(err)
	}

	pair, err := uc.tokens.IssueTokens(ctx, claims.Session(), claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

func refreshError(err error) error {
	switch {
	case errors.Is(err, domainerror.ErrRevokedToken):
		return domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "refresh token has been revoked", err)
	case errors.Is(err, domainerror.ErrExpiredToken):
		return domainerror.NewAuthError(domainerror.ErrCodeExpiredToken, "refresh token has expired", err)
	case errors.Is(err, domainerror.ErrInvalidToken):
		return domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "invalid refresh token", err)
	default:
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
}
