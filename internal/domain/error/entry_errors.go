package error

import "errors"

// Entry domain errors.
var (
	// ErrEntryNotFound is returned when an entry does not exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrEntryLocked is returned when editing an entry past its edit window.
	ErrEntryLocked = errors.New("entry can no longer be edited")

	ErrEntryTextRequired = errors.New("entry text is required")
	ErrEntryTextTooLong  = errors.New("entry text too long")
	ErrInvalidRating     = errors.New("invalid rating")

	// ErrNotAuthorizedToModifyEntry is returned when the entry belongs to another user.
	ErrNotAuthorizedToModifyEntry = errors.New("not authorized to modify entry")

	// ErrEntryCategoryNotFound is returned when an entry references an unknown category.
	ErrEntryCategoryNotFound = errors.New("category not found for entry")

	// ErrInvalidEntryDateRange is returned when a listing range ends before it starts.
	ErrInvalidEntryDateRange = errors.New("invalid date range")
)

// EntryErrorCode defines error codes for entry errors.
// Format: ENTRY-XXYYYY.
type EntryErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeEntryTextRequired     EntryErrorCode = "ENTRY-010001"
	ErrCodeEntryTextTooLong      EntryErrorCode = "ENTRY-010002"
	ErrCodeInvalidRating         EntryErrorCode = "ENTRY-010003"
	ErrCodeEntryCategoryNotFound EntryErrorCode = "ENTRY-010004"
	ErrCodeInvalidEntryDateRange EntryErrorCode = "ENTRY-010005"

	// State errors (02XXXX)
	ErrCodeEntryLocked        EntryErrorCode = "ENTRY-020001"
	ErrCodeEntryNotFound      EntryErrorCode = "ENTRY-020002"
	ErrCodeNotAuthorizedEntry EntryErrorCode = "ENTRY-020003"
)

// EntryError is returned when writing or listing journal entries.
type EntryError = CodedError[EntryErrorCode]

func NewEntryError(code EntryErrorCode, message string, err error) *EntryError {
	return newCoded(code, message, err)
}
