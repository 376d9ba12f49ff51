package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

func (r *GormRepo) GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db(ctx).Preload("Product").Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist is idempotent; an existing row is left untouched.
func (r *GormRepo) AddToWishlist(ctx context.Context, item *models.WishlistItem) error {
	return r.db(ctx).Omit("Product").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}}, DoNothing: true}).
		Create(item).Error
}

func (r *GormRepo) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.db(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
