package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

// guestMigrationRepository implements the adapter.GuestMigrationRepository interface.
type guestMigrationRepository struct {
	db *gorm.DB
}

// NewGuestMigrationRepository creates a new guest migration repository instance.
func NewGuestMigrationRepository(db *gorm.DB) adapter.GuestMigrationRepository {
	return &guestMigrationRepository{
		db: db,
	}
}

// Claim inserts an in-progress marker for the user. When a marker already
// exists it is taken over only if it is finished or its in-progress claim
// started before staleBefore. Exactly one concurrent caller wins.
func (r *guestMigrationRepository) Claim(ctx context.Context, userID uuid.UUID, deviceID string, now, staleBefore time.Time) (bool, error) {
	marker := &model.GuestMigrationModel{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  deviceID,
		Status:    string(entity.MigrationStatusInProgress),
		StartedAt: now.UTC(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(marker)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	result = r.db.WithContext(ctx).
		Model(&model.GuestMigrationModel{}).
		Where("user_id = ? AND (status <> ? OR started_at < ?)",
			userID, string(entity.MigrationStatusInProgress), staleBefore.UTC()).
		Updates(map[string]any{
			"device_id":           deviceID,
			"status":              string(entity.MigrationStatusInProgress),
			"categories_migrated": 0,
			"entries_migrated":    0,
			"started_at":          now.UTC(),
			"completed_at":        nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Finish records the final status and counts of the claimed migration.
func (r *guestMigrationRepository) Finish(ctx context.Context, userID uuid.UUID, status entity.MigrationStatus, categories, entries int, now time.Time) error {
	completedAt := now.UTC()
	return r.db.WithContext(ctx).
		Model(&model.GuestMigrationModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"status":              string(status),
			"categories_migrated": categories,
			"entries_migrated":    entries,
			"completed_at":        &completedAt,
		}).Error
}

// FindByUserID returns the marker for the user, or nil when none exists.
func (r *guestMigrationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.GuestMigration, error) {
	var marker model.GuestMigrationModel
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&marker)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return marker.ToEntity(), nil
}

// DeleteByUserID removes the marker.
func (r *guestMigrationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GuestMigrationModel{}, "user_id = ?", userID).Error
}
