package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

var ErrTokenUnusable = errors.New("refresh token expired, revoked or unknown")

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return r.db(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RotateRefreshToken atomically burns oldJTI (it must be live and match
// tokenHash) and stores next.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, tokenHash string, next *models.RefreshToken) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		res := tx.DB.Model(&models.RefreshToken{}).
			Where("jti = ? AND token_hash = ? AND revoked = ? AND expires_at > ?", oldJTI, tokenHash, false, time.Now().UTC()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenUnusable
		}
		return tx.AddRefreshToken(ctx, next)
	})
}

func (r *GormRepo) RevokeRefreshByHash(ctx context.Context, tokenHash string) error {
	return r.db(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
