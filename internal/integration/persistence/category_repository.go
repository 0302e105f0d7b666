package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) adapter.CategoryRepository {
	return &categoryRepository{db: db}
}

// Create and Update both lean on idx_categories_user_name for name clashes.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	err := r.db.WithContext(ctx).Create(model.CategoryFromEntity(category)).Error
	return translate(err, nil, domainerror.ErrCategoryNameExists)
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	err := r.db.WithContext(ctx).Save(model.CategoryFromEntity(category)).Error
	return translate(err, nil, domainerror.ErrCategoryNameExists)
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var row model.CategoryModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, domainerror.ErrCategoryNotFound, nil)
	}
	return row.ToEntity(), nil
}

// FindByUserID returns oldest first; same-instant rows fall back to name.
func (r *categoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	var rows []model.CategoryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	categories := make([]*entity.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, rows[i].ToEntity())
	}
	return categories, nil
}

// ExistsByNameForUser compares names case-insensitively.
func (r *categoryRepository) ExistsByNameForUser(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &model.CategoryModel{}, userID)
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CategoryModel{}, "id = ?", id).Error
}

func (r *categoryRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CategoryModel{}, "user_id = ?", userID).Error
}
