package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/media"
	"github.com/Skotchmaster/pharmacy/internal/models"
	"github.com/Skotchmaster/pharmacy/internal/repo"
)

const prescriptionFolder = "prescriptions"

type PrescriptionService struct {
	Repo     *repo.GormRepo
	Media    media.Uploader
	Events   events.Publisher
	MaxBytes int64
}

func mediaError(err error) error {
	switch {
	case errors.Is(err, media.ErrDisabled):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, media.ErrUnsupportedType):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}

func checkSize(size, max int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if max > 0 && size > max {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, max)
	}
	return nil
}

func (s *PrescriptionService) Upload(ctx context.Context, userID uuid.UUID, r io.Reader, size int64, notes string) (*models.Prescription, error) {
	l := logging.FromContext(ctx).With("svc", "prescription.upload")

	if err := checkSize(size, s.MaxBytes); err != nil {
		return nil, err
	}
	if len(notes) > 500 {
		return nil, fmt.Errorf("%w: notes are limited to 500 characters", ErrValidation)
	}
	ct, body, err := media.Accept(r, media.DocumentTypes)
	if err != nil {
		return nil, mediaError(err)
	}

	asset, err := s.Media.Upload(ctx, body, prescriptionFolder)
	if err != nil {
		return nil, mediaError(err)
	}

	rx := &models.Prescription{
		UserID:       userID,
		FileURL:      asset.URL,
		FilePublicID: asset.PublicID,
		ContentType:  ct,
		Notes:        strings.TrimSpace(notes),
		Status:       models.PrescriptionPending,
	}
	if err := s.Repo.CreatePrescription(ctx, rx); err != nil {
		if delErr := s.Media.Delete(ctx, asset.PublicID); delErr != nil {
			l.Warn("orphan_asset", "public_id", asset.PublicID, "error", delErr)
		}
		return nil, err
	}

	s.publish(ctx, rx, events.TypePrescriptionUploaded)
	return rx, nil
}

func (s *PrescriptionService) List(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Prescription, error) {
	return s.Repo.ListPrescriptions(ctx, repo.PrescriptionFilter{UserID: &userID}, offset, limit)
}

func (s *PrescriptionService) ListAll(ctx context.Context, status string, offset, limit int) (int64, []models.Prescription, error) {
	st := models.PrescriptionStatus(status)
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListPrescriptions(ctx, repo.PrescriptionFilter{Status: st}, offset, limit)
}

func (s *PrescriptionService) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.Prescription, error) {
	rx, err := s.Repo.GetPrescription(ctx, id)
	if err != nil {
		return nil, notFound(err, "prescription")
	}
	if rx.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("%w: prescription", ErrNotFound)
	}
	return rx, nil
}

// Delete withdraws a pending prescription and removes its file.
func (s *PrescriptionService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "prescription.delete")

	rx, err := s.Get(ctx, id, userID, false)
	if err != nil {
		return err
	}
	if rx.Status != models.PrescriptionPending {
		return fmt.Errorf("%w: prescription was already %s", ErrConflict, rx.Status)
	}
	ok, err := s.Repo.DeletePendingPrescription(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: prescription was reviewed meanwhile", ErrConflict)
	}

	if err := s.Media.Delete(ctx, rx.FilePublicID); err != nil && !errors.Is(err, media.ErrDisabled) {
		l.Warn("prescription_asset_delete_failed", "public_id", rx.FilePublicID, "error", err)
	}
	return nil
}

func (s *PrescriptionService) Review(ctx context.Context, reviewerID, id uuid.UUID, status, note string) (*models.Prescription, error) {
	st := models.PrescriptionStatus(status)
	if st != models.PrescriptionApproved && st != models.PrescriptionRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}
	rx, err := s.Repo.GetPrescription(ctx, id)
	if err != nil {
		return nil, notFound(err, "prescription")
	}
	if rx.Status != models.PrescriptionPending {
		return nil, fmt.Errorf("%w: prescription was already %s", ErrConflict, rx.Status)
	}

	ok, err := s.Repo.ReviewPrescription(ctx, id, st, strings.TrimSpace(note), reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: prescription was reviewed meanwhile", ErrConflict)
	}

	if rx, err = s.Repo.GetPrescription(ctx, id); err != nil {
		return nil, err
	}
	s.publish(ctx, rx, events.TypePrescriptionReviewed)
	return rx, nil
}

func (s *PrescriptionService) publish(ctx context.Context, rx *models.Prescription, eventType string) {
	l := logging.FromContext(ctx).With("svc", "prescription.publish")

	contact := events.Contact{UserID: rx.UserID.String()}
	if user, err := s.Repo.GetUserByID(ctx, rx.UserID); err == nil {
		contact = contactOf(user)
	}
	events.PublishLogged(ctx, s.Events, l, events.TopicPrescriptions, rx.ID.String(), events.PrescriptionEvent{
		Type:           eventType,
		PrescriptionID: rx.ID.String(),
		Status:         string(rx.Status),
		Note:           rx.ReviewNote,
		Contact:        contact,
	})
}
