package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortName      = "name"
)

type ProductFilter struct {
	CategoryIDs []uuid.UUID
	BrandID     *uuid.UUID
	MinPrice    *int64
	MaxPrice    *int64
	RequiresRx  *bool
	InStock     bool
	Q           string
	ActiveOnly  bool
	Sort        string
}

func (f ProductFilter) scope(db *gorm.DB) *gorm.DB {
	if len(f.CategoryIDs) > 0 {
		db = db.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.BrandID != nil {
		db = db.Where("brand_id = ?", *f.BrandID)
	}
	if f.MinPrice != nil {
		db = db.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("price <= ?", *f.MaxPrice)
	}
	if f.RequiresRx != nil {
		db = db.Where("requires_prescription = ?", *f.RequiresRx)
	}
	if f.InStock {
		db = db.Where("stock > 0")
	}
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if f.Q != "" {
		p := likePattern(f.Q)
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(composition) LIKE ? ESCAPE '\' OR LOWER(manufacturer) LIKE ? ESCAPE '\')`, p, p, p)
	}
	return db
}

func (f ProductFilter) order() string {
	switch f.Sort {
	case SortPriceAsc:
		return "price ASC, id ASC"
	case SortPriceDesc:
		return "price DESC, id ASC"
	case SortName:
		return "name ASC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	query := r.db(ctx).Model(&models.Product{}).Scopes(f.scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := query.Preload("Brand").Order(f.order()).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	var product models.Product
	if err := r.db(ctx).Preload("Brand").Preload("Category").Scopes(byIDOrSlug(idOrSlug)).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs keeps the order of ids and skips unknown ones.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Product
	if err := r.db(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db(ctx).Omit("Brand", "Category").Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.db(ctx).Omit("Brand", "Category").Save(p).Error
}

func (r *GormRepo) SKUTaken(ctx context.Context, sku string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := r.db(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteProduct drops the product and every cart and wishlist row that points at it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.DB.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		res := tx.DB.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AdjustStock applies delta to stock unless the result would go negative.
// ok is false when the product exists but lacks stock.
func (r *GormRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (ok bool, err error) {
	res := r.db(ctx).Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if _, err := r.GetProductByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *GormRepo) SearchProductsDB(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return r.ListProducts(ctx, ProductFilter{Q: q, ActiveOnly: true, Sort: SortName}, offset, limit)
}
