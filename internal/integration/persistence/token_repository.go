package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

// TokenRepository stores hashed refresh tokens and reset grants. Callers hash
// raw tokens before every lookup.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *model.RefreshTokenModel) error

	// IsRefreshTokenActive reports whether the hash exists, is unrevoked and unexpired.
	IsRefreshTokenActive(ctx context.Context, hash string) (bool, error)

	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeUserRefreshTokens revokes every live refresh token of the user.
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error

	SaveResetToken(ctx context.Context, token *model.PasswordResetTokenModel) error

	// FindResetToken returns nil without error when the hash is unknown.
	FindResetToken(ctx context.Context, hash string) (*model.PasswordResetTokenModel, error)

	// MarkResetTokenUsed flips an unused grant to used. It reports false when
	// another request redeemed it first.
	MarkResetTokenUsed(ctx context.Context, hash string) (bool, error)
}

type tokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTokenRepository creates a new token repository instance.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *tokenRepository) SaveRefreshToken(ctx context.Context, token *model.RefreshTokenModel) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.now().UTC()
	}
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) IsRefreshTokenActive(ctx context.Context, hash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, r.now().UTC()).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeRefreshToken gives domainerror.ErrRevokedToken when no live row
// matched, so of two racing rotations only one sees success.
func (r *tokenRepository) RevokeRefreshToken(ctx context.Context, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", r.now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrRevokedToken
	}
	return nil
}

func (r *tokenRepository) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now().UTC()).Error
}

func (r *tokenRepository) SaveResetToken(ctx context.Context, token *model.PasswordResetTokenModel) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.now().UTC()
	}
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) FindResetToken(ctx context.Context, hash string) (*model.PasswordResetTokenModel, error) {
	var token model.PasswordResetTokenModel
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) MarkResetTokenUsed(ctx context.Context, hash string) (bool, error) {
	now := r.now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("token_hash = ? AND used = ?", hash, false).
		Updates(map[string]any{
			"used":    true,
			"used_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
