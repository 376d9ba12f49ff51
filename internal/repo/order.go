package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

type OrderFilter struct {
	UserID *uuid.UUID
	Status models.OrderStatus
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.db(ctx).Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) OrderNumberTaken(ctx context.Context, number string) (bool, error) {
	var n int64
	if err := r.db(ctx).Model(&models.Order{}).Where("order_number = ?", number).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	query := r.db(ctx).Model(&models.Order{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// TransitionOrder moves the order from one status to another. It returns
// false when the order is no longer in the expected status.
func (r *GormRepo) TransitionOrder(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	updates := map[string]any{"status": to}
	if to == models.OrderStatusCancelled {
		updates["cancelled_at"] = time.Now().UTC()
	}
	res := r.db(ctx).Model(&models.Order{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	res := r.db(ctx).Model(&models.Order{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestockItems gives the quantities of an order back to the catalog.
func (r *GormRepo) RestockItems(ctx context.Context, items []models.OrderItem) error {
	for _, it := range items {
		if err := r.db(ctx).Model(&models.Product{}).
			Where("id = ?", it.ProductID).
			Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}
