// Package entry contains journal entry use cases.
package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
)

// MaxTextLength is the maximum length of an entry's text, in characters.
const MaxTextLength = 500

// ValidateContent checks entry text and rating. Guest staging applies the same rules.
func ValidateContent(text string, rating int) error {
	if strings.TrimSpace(text) == "" {
		return domainerror.NewEntryError(
			domainerror.ErrCodeEntryTextRequired,
			"entry text is required",
			domainerror.ErrEntryTextRequired,
		)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return domainerror.NewEntryError(
			domainerror.ErrCodeEntryTextTooLong,
			fmt.Sprintf("entry text must not exceed %d characters", MaxTextLength),
			domainerror.ErrEntryTextTooLong,
		)
	}
	if err := valueobject.ValidateRating(rating); err != nil {
		return domainerror.NewEntryError(
			domainerror.ErrCodeInvalidRating,
			err.Error(),
			domainerror.ErrInvalidRating,
		)
	}
	return nil
}

// checkCategory accepts nil, a default category id, or a category owned by userID.
func checkCategory(ctx context.Context, repo adapter.CategoryRepository, userID uuid.UUID, categoryID *uuid.UUID) (*entity.Category, error) {
	if categoryID == nil {
		return nil, nil
	}
	if c, ok := entity.FindDefaultCategory(*categoryID); ok {
		return c, nil
	}

	category, err := repo.FindByID(ctx, *categoryID)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, domainerror.NewEntryError(
				domainerror.ErrCodeEntryCategoryNotFound,
				"category not found",
				domainerror.ErrEntryCategoryNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if category.UserID != userID {
		return nil, domainerror.NewEntryError(
			domainerror.ErrCodeEntryCategoryNotFound,
			"category not found",
			domainerror.ErrEntryCategoryNotFound,
		)
	}
	return category, nil
}

// loadOwnedEntry fetches an entry and checks it belongs to userID.
func loadOwnedEntry(ctx context.Context, repo adapter.EntryRepository, entryID, userID uuid.UUID) (*entity.Entry, error) {
	e, err := repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, domainerror.ErrEntryNotFound) {
			return nil, domainerror.NewEntryError(
				domainerror.ErrCodeEntryNotFound,
				"entry not found",
				domainerror.ErrEntryNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	if e.UserID != userID {
		return nil, domainerror.NewEntryError(
			domainerror.ErrCodeNotAuthorizedEntry,
			"not authorized to modify this entry",
			domainerror.ErrNotAuthorizedToModifyEntry,
		)
	}
	return e, nil
}
