package models

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionPending  PrescriptionStatus = "pending"
	PrescriptionApproved PrescriptionStatus = "approved"
	PrescriptionRejected PrescriptionStatus = "rejected"
)

func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionPending, PrescriptionApproved, PrescriptionRejected:
		return true
	}
	return false
}

type Prescription struct {
	Base
	UserID       uuid.UUID          `gorm:"type:uuid;index;not null" json:"user_id"`
	FileURL      string             `gorm:"size:512;not null"        json:"file_url"`
	FilePublicID string             `gorm:"size:255;not null"        json:"file_public_id"`
	ContentType  string             `gorm:"size:64"                  json:"content_type"`
	Notes        string             `gorm:"size:500"                 json:"notes,omitempty"`
	Status       PrescriptionStatus `gorm:"size:20;index;not null"   json:"status"`
	ReviewNote   string             `gorm:"size:500"                 json:"review_note,omitempty"`
	ReviewedBy   *uuid.UUID         `gorm:"type:uuid"                json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time         `json:"reviewed_at,omitempty"`
}
