// Package category contains category-related use cases.
package category

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	domainerror "github.com/annoylog/backend/internal/domain/error"
)

const (
	// MaxCategoryNameLength is the maximum allowed length for category names.
	MaxCategoryNameLength = 50
	// MaxEmojiLength bounds the emoji field in runes (flags and ZWJ sequences are several runes).
	MaxEmojiLength = 16
)

// hexColorRegex accepts #RGB and #RRGGBB.
var hexColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// ValidateFields checks a category name, emoji and color. Guest staging
// applies the same rules so migrated categories are always valid remotely.
func ValidateFields(name, emoji, color string) error {
	if strings.TrimSpace(name) == "" {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeMissingCategoryFields,
			"category name is required",
			nil,
		)
	}

	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryNameTooLong,
			fmt.Sprintf("category name must not exceed %d characters", MaxCategoryNameLength),
			domainerror.ErrCategoryNameTooLong,
		)
	}

	if utf8.RuneCountInString(emoji) > MaxEmojiLength {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeMissingCategoryFields,
			"emoji is too long",
			nil,
		)
	}

	if color != "" && !hexColorRegex.MatchString(color) {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeInvalidColorFormat,
			"color must be a valid hex format (#XXXXXX)",
			domainerror.ErrInvalidColorFormat,
		)
	}

	return nil
}

// isDefaultName reports whether name collides with a default category name.
func isDefaultName(name string, defaults []string) bool {
	for _, d := range defaults {
		if strings.EqualFold(d, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
