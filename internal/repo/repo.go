package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Transaction runs fn against a repo bound to a single database transaction.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) db(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx)
}

// byIDOrSlug scopes a query to the row whose id or slug matches key.
func byIDOrSlug(key string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id, err := uuid.Parse(key); err == nil {
			return db.Where("id = ?", id)
		}
		return db.Where("slug = ?", strings.ToLower(key))
	}
}

func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(q)
	return "%" + q + "%"
}

// SlugTaken reports whether another row of model already uses slug.
func (r *GormRepo) SlugTaken(ctx context.Context, model any, slug string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := r.db(ctx).Model(model).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
