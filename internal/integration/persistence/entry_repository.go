package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

// entryRepository implements the adapter.EntryRepository interface.
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository instance.
func NewEntryRepository(db *gorm.DB) adapter.EntryRepository {
	return &entryRepository{
		db: db,
	}
}

// Create inserts an entry, keeping its CreatedAt.
func (r *entryRepository) Create(ctx context.Context, entry *entity.Entry) error {
	return r.db.WithContext(ctx).Create(model.EntryFromEntity(entry)).Error
}

// FindByID retrieves an entry by its ID.
func (r *entryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	var row model.EntryModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, domainerror.ErrEntryNotFound, nil)
	}
	return row.ToEntity(), nil
}

// List returns entries matching the filter, newest first, and the total count.
func (r *entryRepository) List(ctx context.Context, filter entity.EntryFilter) ([]*entity.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.EntryModel{}).Where("user_id = ?", filter.UserID)
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.UTC())
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var entryModels []model.EntryModel
	result := query.Find(&entryModels)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return toEntries(entryModels), total, nil
}

// ListBetween returns every entry of the user created in [from, to), oldest first.
func (r *entryRepository) ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entity.Entry, error) {
	var entryModels []model.EntryModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntries(entryModels), nil
}

// ListCreatedAt returns the creation instants of all of the user's entries, newest first.
func (r *entryRepository) ListCreatedAt(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	var entryModels []model.EntryModel
	result := r.db.WithContext(ctx).
		Select("created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	instants := make([]time.Time, len(entryModels))
	for i := range entryModels {
		instants[i] = entryModels[i].CreatedAt
	}
	return instants, nil
}

// ExistsByUserID reports whether the user owns at least one entry.
func (r *entryRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &model.EntryModel{}, userID)
}

// Update saves changes to an entry.
func (r *entryRepository) Update(ctx context.Context, entry *entity.Entry) error {
	return r.db.WithContext(ctx).Save(model.EntryFromEntity(entry)).Error
}

// Delete removes an entry.
func (r *entryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EntryModel{}, "id = ?", id).Error
}

func (r *entryRepository) ClearCategory(ctx context.Context, userID, categoryID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EntryModel{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Update("category_id", nil)
	return result.RowsAffected, result.Error
}

// DeleteByUserID removes every entry owned by the user.
func (r *entryRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EntryModel{}, "user_id = ?", userID).Error
}

func toEntries(entryModels []model.EntryModel) []*entity.Entry {
	entries := make([]*entity.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToEntity()
	}
	return entries
}
