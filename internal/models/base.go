package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Brand{},
		&Category{},
		&Product{},
		&CartItem{},
		&WishlistItem{},
		&Prescription{},
		&Order{},
		&OrderItem{},
	}
}
