// Package dto holds the JSON shapes of the HTTP API and their mappers.
package dto

import (
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
)

// RegisterRequest: a DeviceID, from here or X-Device-ID, migrates that
// device's guest data into the new account.
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"name" binding:"required,min=1,max=100"`
	Password      string `json:"password" binding:"required,min=8"`
	TermsAccepted bool   `json:"terms_accepted" binding:"required"`
	Timezone      string `json:"timezone,omitempty"`
	DeviceID      string `json:"device_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"device_id,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest is optional in full; an empty body logs out the header device.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceID     string `json:"device_id,omitempty"`
}

type LogoutResponse struct {
	Message       string `json:"message"`
	Revoked       bool   `json:"revoked"`
	ClearedDevice string `json:"cleared_device,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the token from the emailed link.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// AuthResponse represents the response for authentication endpoints.
// Migration and Entitlement report the session-start steps run after sign-in.
type AuthResponse struct {
	TokenResponse
	User        UserResponse         `json:"user"`
	Migration   *MigrationResponse   `json:"migration,omitempty"`
	Entitlement *EntitlementResponse `json:"entitlement,omitempty"`
}

// TokenResponse is also the whole body of a refresh.
type TokenResponse struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

func ToTokenResponse(pair *adapter.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: pair.AccessExpiresAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is every non-2xx body. Code is the domain error code when
// there is one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func ToUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Timezone:  user.Timezone,
		CreatedAt: user.CreatedAt,
	}
}
