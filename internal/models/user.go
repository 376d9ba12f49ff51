package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Address struct {
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20"  json:"postal_code"`
}

type User struct {
	Base
	Name         string  `gorm:"size:120;not null"        json:"name"`
	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        *string `gorm:"size:20;uniqueIndex"      json:"phone,omitempty"`
	PasswordHash string  `gorm:"not null"                 json:"-"`
	Role         string  `gorm:"size:20;not null;default:user" json:"role"`
	IsVerified   bool    `gorm:"not null;default:false"   json:"is_verified"`
	Address      Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"  json:"user_id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	JTI       string    `gorm:"size:64;uniqueIndex;not null" json:"jti"`
	ExpiresAt time.Time `gorm:"not null"                  json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"    json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
