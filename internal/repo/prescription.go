package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

type PrescriptionFilter struct {
	UserID *uuid.UUID
	Status models.PrescriptionStatus
}

func (r *GormRepo) CreatePrescription(ctx context.Context, p *models.Prescription) error {
	return r.db(ctx).Create(p).Error
}

func (r *GormRepo) GetPrescription(ctx context.Context, id uuid.UUID) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.db(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListPrescriptions(ctx context.Context, f PrescriptionFilter, offset, limit int) (int64, []models.Prescription, error) {
	query := r.db(ctx).Model(&models.Prescription{})
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

	items := make([]models.Prescription, 0, limit)
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// DeletePendingPrescription removes the row only while it is still pending.
func (r *GormRepo) DeletePendingPrescription(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db(ctx).Where("id = ? AND status = ?", id, models.PrescriptionPending).Delete(&models.Prescription{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReviewPrescription records a decision on a pending prescription. It
// returns false when the prescription was already reviewed.
func (r *GormRepo) ReviewPrescription(ctx context.Context, id uuid.UUID, status models.PrescriptionStatus, note string, reviewer uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	res := r.db(ctx).Model(&models.Prescription{}).
		Where("id = ? AND status = ?", id, models.PrescriptionPending).
		Updates(map[string]any{
			"status":      status,
			"review_note": note,
			"reviewed_by": reviewer,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
