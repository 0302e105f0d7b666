package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// translate maps gorm's not-found and unique-violation errors onto domain
// sentinels. A nil sentinel leaves that case untouched.
func translate(err, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	default:
		return err
	}
}

// exists runs a LIMIT 1 probe on the user_id column of m's table.
func exists(ctx context.Context, db *gorm.DB, m any, userID uuid.UUID) (bool, error) {
	var found []int
	err := db.WithContext(ctx).
		Model(m).
		Select("1").
		Where("user_id = ?", userID).
		Limit(1).
		Find(&found).Error
	return len(found) > 0, err
}
