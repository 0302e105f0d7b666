package adapters

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

// DefaultResetTokenLifetime applies when no lifetime is configured.
const DefaultResetTokenLifetime = time.Hour

type resetTokenService struct {
	repo     persistence.TokenRepository
	lifetime time.Duration
	now      func() time.Time
}

// NewPasswordResetTokenService issues random single-use reset grants.
func NewPasswordResetTokenService(repo persistence.TokenRepository, lifetime time.Duration) adapter.PasswordResetTokenService {
	if lifetime <= 0 {
		lifetime = DefaultResetTokenLifetime
	}
	return &resetTokenService{
		repo:     repo,
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (s *resetTokenService) Lifetime() time.Duration {
	return s.lifetime
}

func (s *resetTokenService) IssueResetToken(ctx context.Context, userID uuid.UUID, email string) (*adapter.PasswordResetToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	now := s.now().UTC()
	expiresAt := now.Add(s.lifetime)
	err := s.repo.SaveResetToken(ctx, &model.PasswordResetTokenModel{
		TokenHash: HashToken(raw),
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save reset token: %w", err)
	}

	return &adapter.PasswordResetToken{
		Token:     raw,
		UserID:    userID,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *resetTokenService) ConsumeResetToken(ctx context.Context, raw string) (*adapter.PasswordResetToken, error) {
	hash := HashToken(raw)

	stored, err := s.repo.FindResetToken(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load reset token: %w", err)
	}
	if stored == nil || stored.Used {
		return nil, domainerror.ErrInvalidResetToken
	}
	if !s.now().Before(stored.ExpiresAt) {
		return nil, domainerror.ErrExpiredResetToken
	}

	won, err := s.repo.MarkResetTokenUsed(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to mark reset token used: %w", err)
	}
	if !won {
		return nil, domainerror.ErrInvalidResetToken
	}

	return &adapter.PasswordResetToken{
		UserID:    stored.UserID,
		Email:     stored.Email,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}
