package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

func (r *GormRepo) CreateBrand(ctx context.Context, b *models.Brand) error {
	return r.db(ctx).Create(b).Error
}

func (r *GormRepo) GetBrand(ctx context.Context, idOrSlug string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db(ctx).Scopes(byIDOrSlug(idOrSlug)).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *GormRepo) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db(ctx).Where("id = ?", id).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *GormRepo) ListBrands(ctx context.Context, q string, active *bool, offset, limit int) (int64, []models.Brand, error) {
	query := r.db(ctx).Model(&models.Brand{})
	if q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(q))
	}
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var brands []models.Brand
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&brands).Error; err != nil {
		return 0, nil, err
	}
	return total, brands, nil
}

func (r *GormRepo) BrandNameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := r.db(ctx).Model(&models.Brand{}).Where("LOWER(name) = LOWER(?)", name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) SaveBrand(ctx context.Context, b *models.Brand) error {
	return r.db(ctx).Save(b).Error
}

func (r *GormRepo) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	res := r.db(ctx).Delete(&models.Brand{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountProductsByBrand(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&models.Product{}).Where("brand_id = ?", id).Count(&n).Error
	return n, err
}
