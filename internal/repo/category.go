package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

type CategoryFilter struct {
	ParentID   *uuid.UUID
	RootsOnly  bool
	Level      int
	ActiveOnly bool
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db(ctx).Create(c).Error
}

func (r *GormRepo) GetCategory(ctx context.Context, idOrSlug string) (*models.Category, error) {
	var cat models.Category
	if err := r.db(ctx).Scopes(byIDOrSlug(idOrSlug)).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := r.db(ctx).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) ListCategories(ctx context.Context, f CategoryFilter) ([]models.Category, error) {
	query := r.db(ctx).Model(&models.Category{})
	switch {
	case f.ParentID != nil:
		query = query.Where("parent_id = ?", *f.ParentID)
	case f.RootsOnly:
		query = query.Where("parent_id IS NULL")
	}
	if f.Level > 0 {
		query = query.Where("level = ?", f.Level)
	}
	if f.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var cats []models.Category
	if err := query.Order("level ASC, name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.db(ctx).Save(c).Error
}

// SaveCategoryTree persists a moved category together with its re-levelled
// descendants.
func (r *GormRepo) SaveCategoryTree(ctx context.Context, root *models.Category, levels map[uuid.UUID]int) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Save(root).Error; err != nil {
			return err
		}
		for id, level := range levels {
			if id == root.ID {
				continue
			}
			if err := tx.DB.Model(&models.Category{}).Where("id = ?", id).Update("level", level).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res := r.db(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

func (r *GormRepo) CountProductsByCategory(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error
	return n, err
}
