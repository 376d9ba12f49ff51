package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db(ctx).Preload("Product").Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertCartItem sets the quantity of a cart line, creating it when absent.
func (r *GormRepo) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		res := tx.DB.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", item.Quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.DB.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}
		return tx.DB.Omit("Product").Create(item).Error
	})
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.db(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.db(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
