package error

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryNameExists  = errors.New("category name already exists")
	ErrCategoryNameTooLong = errors.New("category name too long")
	ErrInvalidColorFormat  = errors.New("invalid color format")

	// ErrNotAuthorizedToModifyCategory is a write to another user's category.
	ErrNotAuthorizedToModifyCategory = errors.New("not authorized to modify category")
	// ErrDefaultCategoryImmutable is any write to one of the built-in categories.
	ErrDefaultCategoryImmutable = errors.New("default categories cannot be modified")
)

// CategoryErrorCode is CAT-XXYYYY.
type CategoryErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeCategoryNameTooLong   CategoryErrorCode = "CAT-010001"
	ErrCodeInvalidColorFormat    CategoryErrorCode = "CAT-010002"
	ErrCodeMissingCategoryFields CategoryErrorCode = "CAT-010003"

	// Lookup and ownership errors (02XXXX)
	ErrCodeCategoryNotFound         CategoryErrorCode = "CAT-020001"
	ErrCodeCategoryNameExists       CategoryErrorCode = "CAT-020002"
	ErrCodeNotAuthorizedCategory    CategoryErrorCode = "CAT-020003"
	ErrCodeDefaultCategoryImmutable CategoryErrorCode = "CAT-020004"
)

// CategoryError is returned by the category use cases.
type CategoryError = CodedError[CategoryErrorCode]

// NewCategoryError creates a new CategoryError.
func NewCategoryError(code CategoryErrorCode, message string, err error) *CategoryError {
	return newCoded(code, message, err)
}
