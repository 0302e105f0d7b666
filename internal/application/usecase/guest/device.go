// Package guest manages data staged by devices that have not signed in.
package guest

import (
	"regexp"

	domainerror "github.com/annoylog/backend/internal/domain/error"
)

var deviceIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ValidateDeviceID checks the device id supplied by a client.
func ValidateDeviceID(deviceID string) error {
	if deviceID == "" {
		return domainerror.NewGuestError(
			domainerror.ErrCodeMissingDeviceID,
			"device id is required",
			domainerror.ErrMissingDeviceID,
		)
	}
	if !deviceIDRegex.MatchString(deviceID) {
		return domainerror.NewGuestError(
			domainerror.ErrCodeInvalidDeviceID,
			"device id must be 8-64 letters, digits, '-' or '_'",
			domainerror.ErrInvalidDeviceID,
		)
	}
	return nil
}
