package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/domain/entity"
)

// TokenPair is handed to a client after sign-in or refresh.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// TokenClaims is the identity a token carries. DeviceID is empty when the
// session was opened without a device.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	DeviceID  string
	ExpiresAt time.Time
}

// Session rebuilds the session the token was issued for.
func (c *TokenClaims) Session() *entity.Session {
	return entity.NewSession(c.UserID, c.DeviceID)
}

// TokenService issues device-bound session tokens.
// Parse errors wrap domainerror.ErrInvalidToken or ErrRevokedToken; any other
// error is an infrastructure failure.
type TokenService interface {
	IssueTokens(ctx context.Context, session *entity.Session, email string) (*TokenPair, error)
	ParseAccessToken(ctx context.Context, token string) (*TokenClaims, error)
	// ParseRefreshToken also rejects refresh tokens that were revoked.
	ParseRefreshToken(ctx context.Context, token string) (*TokenClaims, error)
	// RevokeRefreshToken gives domainerror.ErrRevokedToken for a token that
	// is unknown or already revoked.
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

// PasswordResetToken is a single-use reset grant. Token holds the raw value
// only right after issuing; it is never stored.
type PasswordResetToken struct {
	Token     string
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// PasswordResetTokenService issues and redeems reset grants.
type PasswordResetTokenService interface {
	IssueResetToken(ctx context.Context, userID uuid.UUID, email string) (*PasswordResetToken, error)
	// ConsumeResetToken marks the grant used. Unknown or used tokens give
	// domainerror.ErrInvalidResetToken, stale ones ErrExpiredResetToken.
	ConsumeResetToken(ctx context.Context, token string) (*PasswordResetToken, error)
	// Lifetime is how long an issued grant stays redeemable.
	Lifetime() time.Duration
}
