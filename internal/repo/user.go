package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.db(ctx).Create(u).Error
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ContactTaken reports which of email / phone already belong to another user.
func (r *GormRepo) ContactTaken(ctx context.Context, email string, phone *string, exclude uuid.UUID) (emailTaken, phoneTaken bool, err error) {
	count := func(col, val string) (bool, error) {
		var n int64
		q := r.db(ctx).Model(&models.User{}).Where(col+" = ?", val)
		if exclude != uuid.Nil {
			q = q.Where("id <> ?", exclude)
		}
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}

	if email != "" {
		if emailTaken, err = count("email", email); err != nil {
			return false, false, err
		}
	}
	if phone != nil && *phone != "" {
		if phoneTaken, err = count("phone", *phone); err != nil {
			return false, false, err
		}
	}
	return emailTaken, phoneTaken, nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	res := r.db(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetUserByID(ctx, id)
}

func (r *GormRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res := r.db(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListUsers(ctx context.Context, q string, offset, limit int) (int64, []models.User, error) {
	query := r.db(ctx).Model(&models.User{})
	if q != "" {
		p := likePattern(q)
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// SetPassword replaces the hash and revokes every refresh token of the user.
func (r *GormRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		res := tx.DB.Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.RevokeAllForUser(ctx, id)
	})
}

func (r *GormRepo) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
