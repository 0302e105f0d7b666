package auth

import (
	"regexp"
	"strings"
	"time"

	domainerror "github.com/annoylog/backend/internal/domain/error"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail lower-cases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail validates email format using a simple regex.
func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// validateTimezone accepts an empty name or any IANA zone known to the runtime.
func validateTimezone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return domainerror.NewAuthError(
			domainerror.ErrCodeInvalidTimezone,
			"timezone must be a valid IANA name",
			domainerror.ErrInvalidTimezone,
		)
	}
	return nil
}
