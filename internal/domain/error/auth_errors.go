// Package error defines domain-specific errors for the annoyance journal.
package error

import "errors"

// Account and session errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTermsNotAccepted   = errors.New("terms of service must be accepted")
	ErrWeakPassword       = errors.New("password does not meet minimum requirements")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidTimezone    = errors.New("invalid timezone")

	// ErrInvalidToken covers malformed, mis-signed and wrong-kind tokens.
	// Expired tokens wrap it as well.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	// ErrRevokedToken is a refresh token that was logged out or rotated away.
	ErrRevokedToken = errors.New("token has been revoked")

	// ErrInvalidResetToken is an unknown or already redeemed reset grant.
	ErrInvalidResetToken = errors.New("invalid password reset token")
	ErrExpiredResetToken = errors.New("password reset token has expired")
)

// AuthErrorCode is the client-facing code of an AuthError, AUTH-XXYYYY with
// XX the flow and YYYY the case.
type AuthErrorCode string

const (
	// Registration errors (01XXXX)
	ErrCodeEmailExists       AuthErrorCode = "AUTH-010001"
	ErrCodeTermsNotAccepted  AuthErrorCode = "AUTH-010002"
	ErrCodeWeakPassword      AuthErrorCode = "AUTH-010003"
	ErrCodeInvalidEmail      AuthErrorCode = "AUTH-010004"
	ErrCodeMissingFields     AuthErrorCode = "AUTH-010005"
	ErrCodeInvalidTimezone   AuthErrorCode = "AUTH-010006"

	// Login errors (02XXXX)
	ErrCodeInvalidCredentials AuthErrorCode = "AUTH-020001"
	ErrCodeUserNotFound       AuthErrorCode = "AUTH-020002"
	ErrCodeRateLimited        AuthErrorCode = "AUTH-020003"

	// Token errors (03XXXX)
	ErrCodeInvalidToken AuthErrorCode = "AUTH-030001"
	ErrCodeExpiredToken AuthErrorCode = "AUTH-030002"
	ErrCodeMissingToken AuthErrorCode = "AUTH-030003"

	// Password reset errors (04XXXX)
	ErrCodeInvalidResetToken AuthErrorCode = "AUTH-040001"
	ErrCodeExpiredResetToken AuthErrorCode = "AUTH-040002"

	// Account management (05XXXX)
	ErrCodeInvalidConfirmation AuthErrorCode = "AUTH-050001"
	ErrCodeInvalidProfile      AuthErrorCode = "AUTH-050002"
)

// AuthError is returned by the account and session use cases.
type AuthError = CodedError[AuthErrorCode]

// NewAuthError creates a new AuthError.
func NewAuthError(code AuthErrorCode, message string, err error) *AuthError {
	return newCoded(code, message, err)
}
