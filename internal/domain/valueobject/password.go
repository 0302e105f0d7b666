package valueobject

import (
	"errors"
	"unicode"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit; longer input would be silently cut.
	MaxPasswordBytes = 72
)

var (
	errPasswordTooShort = errors.New("password must be at least 8 characters long")
	errPasswordTooLong  = errors.New("password must be at most 72 bytes")
	errPasswordMix      = errors.New("password must contain a letter and a digit")
)

// ValidatePassword applies the account password rule: at least eight
// characters, at most 72 bytes, one letter and one digit.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return errPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return errPasswordTooLong
	}
	var letter, digit bool
	for _, r := range password {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !letter || !digit {
		return errPasswordMix
	}
	return nil
}
