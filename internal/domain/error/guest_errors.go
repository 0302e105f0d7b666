package error

import "errors"

// Guest staging errors.
var (
	// ErrMissingDeviceID is returned when a guest call carries no device id.
	ErrMissingDeviceID = errors.New("device id is required")

	// ErrInvalidDeviceID is returned when the device id is malformed.
	ErrInvalidDeviceID = errors.New("invalid device id")

	// ErrCorruptStagedData is returned when staged data on a device cannot be decoded.
	ErrCorruptStagedData = errors.New("staged data is corrupt")

	// ErrStagedEntryNotFound is returned when a staged entry id is unknown.
	ErrStagedEntryNotFound = errors.New("staged entry not found")

	// ErrStagedCategoryNotFound is returned when a staged entry references a missing staged category.
	ErrStagedCategoryNotFound = errors.New("staged category not found")

	// ErrMigrationClaimed is returned when another migration holds the account's marker.
	ErrMigrationClaimed = errors.New("guest migration already claimed")
)

// GuestErrorCode defines error codes for guest staging errors.
// Format: GUEST-XXYYYY.
type GuestErrorCode string

const (
	// Request errors (01XXXX)
	ErrCodeMissingDeviceID        GuestErrorCode = "GUEST-010001"
	ErrCodeInvalidDeviceID        GuestErrorCode = "GUEST-010002"
	ErrCodeInvalidStagedEntry     GuestErrorCode = "GUEST-010003"
	ErrCodeInvalidStagedCategory  GuestErrorCode = "GUEST-010004"
	ErrCodeStagedEntryNotFound    GuestErrorCode = "GUEST-010005"
	ErrCodeStagedCategoryNotFound GuestErrorCode = "GUEST-010006"

	// Storage errors (02XXXX)
	ErrCodeCorruptStagedData GuestErrorCode = "GUEST-020001"
)

// GuestError is returned by the device-scoped guest flows.
type GuestError = CodedError[GuestErrorCode]

func NewGuestError(code GuestErrorCode, message string, err error) *GuestError {
	return newCoded(code, message, err)
}
