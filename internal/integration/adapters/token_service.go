// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

const tokenIssuer = "annoylog"

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// TokenTTL sets the lifetimes of issued tokens.
type TokenTTL struct {
	Access  time.Duration
	Refresh time.Duration
}

// DefaultTokenTTL is used for zero fields of a TokenTTL.
var DefaultTokenTTL = TokenTTL{
	Access:  15 * time.Minute,
	Refresh: 30 * 24 * time.Hour,
}

// sessionClaims is the JWT body. The subject is the user id.
type sessionClaims struct {
	Email    string    `json:"email"`
	DeviceID string    `json:"device_id,omitempty"`
	Kind     tokenKind `json:"kind"`
	jwt.RegisteredClaims
}

type jwtTokenService struct {
	secret []byte
	ttl    TokenTTL
	repo   persistence.TokenRepository
	now    func() time.Time
}

// NewTokenService creates an HS256 token service backed by the token repository.
func NewTokenService(secret string, repo persistence.TokenRepository, ttl TokenTTL) adapter.TokenService {
	if ttl.Access <= 0 {
		ttl.Access = DefaultTokenTTL.Access
	}
	if ttl.Refresh <= 0 {
		ttl.Refresh = DefaultTokenTTL.Refresh
	}
	return &jwtTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		repo:   repo,
		now:    time.Now,
	}
}

// HashToken is the storage form of a refresh or reset token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *jwtTokenService) IssueTokens(ctx context.Context, session *entity.Session, email string) (*adapter.TokenPair, error) {
	if !session.IsAuthenticated() {
		return nil, fmt.Errorf("cannot issue tokens for a guest session")
	}
	now := s.now().UTC()

	accessExp := now.Add(s.ttl.Access)
	access, err := s.sign(session, email, kindAccess, now, accessExp)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExp := now.Add(s.ttl.Refresh)
	refresh, err := s.sign(session, email, kindRefresh, now, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	err = s.repo.SaveRefreshToken(ctx, &model.RefreshTokenModel{
		TokenHash: HashToken(refresh),
		UserID:    session.UserID,
		DeviceID:  session.DeviceID,
		ExpiresAt: refreshExp,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &adapter.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExp,
	}, nil
}

func (s *jwtTokenService) ParseAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	return s.parse(token, kindAccess)
}

func (s *jwtTokenService) ParseRefreshToken(ctx context.Context, token string) (*adapter.TokenClaims, error) {
	claims, err := s.parse(token, kindRefresh)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.IsRefreshTokenActive(ctx, HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !active {
		return nil, domainerror.ErrRevokedToken
	}
	return claims, nil
}

func (s *jwtTokenService) RevokeRefreshToken(ctx context.Context, token string) error {
	return s.repo.RevokeRefreshToken(ctx, HashToken(token))
}

func (s *jwtTokenService) RevokeUserTokens(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeUserRefreshTokens(ctx, userID)
}

// sign builds one token. Each token gets its own jti so two pairs issued in
// the same second never share a refresh hash.
func (s *jwtTokenService) sign(session *entity.Session, email string, kind tokenKind, now, exp time.Time) (string, error) {
	claims := sessionClaims{
		Email:    email,
		DeviceID: session.DeviceID,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtTokenService) parse(raw string, want tokenKind) (*adapter.TokenClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domainerror.ErrExpiredToken, domainerror.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", domainerror.ErrInvalidToken, err)
	}

	if claims.Kind != want {
		return nil, fmt.Errorf("%w: expected a %s token", domainerror.ErrInvalidToken, want)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", domainerror.ErrInvalidToken)
	}

	out := &adapter.TokenClaims{
		UserID:   userID,
		Email:    claims.Email,
		DeviceID: claims.DeviceID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
