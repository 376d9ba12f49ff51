package models

import (
	"github.com/google/uuid"
)

const MaxCategoryLevel = 3

type Brand struct {
	Base
	Name         string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Slug         string `gorm:"size:140;uniqueIndex;not null" json:"slug"`
	Description  string `gorm:"type:text"                     json:"description"`
	LogoURL      string `gorm:"size:512"                      json:"logo_url,omitempty"`
	LogoPublicID string `gorm:"size:255"                      json:"logo_public_id,omitempty"`
	IsActive     bool   `gorm:"not null"                     json:"is_active"`
}

type Category struct {
	Base
	Name          string     `gorm:"size:120;not null"             json:"name"`
	Slug          string     `gorm:"size:140;uniqueIndex;not null" json:"slug"`
	Description   string     `gorm:"type:text"                     json:"description"`
	ImageURL      string     `gorm:"size:512"                      json:"image_url,omitempty"`
	ImagePublicID string     `gorm:"size:255"                      json:"image_public_id,omitempty"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index"               json:"parent_id,omitempty"`
	Level         int        `gorm:"not null;check:level >= 1 AND level <= 3" json:"level"`
	IsActive      bool       `gorm:"not null"                     json:"is_active"`

	Children []*Category `gorm:"-" json:"children,omitempty"`
}

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Product struct {
	Base
	Name                 string     `gorm:"size:200;not null"             json:"name"`
	Slug                 string     `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description          string     `gorm:"type:text"                     json:"description"`
	Composition          string     `gorm:"size:500"                      json:"composition,omitempty"`
	Manufacturer         string     `gorm:"size:200"                      json:"manufacturer,omitempty"`
	SKU                  *string    `gorm:"size:64;uniqueIndex"           json:"sku,omitempty"`
	Price                int64      `gorm:"not null;check:price >= 0"     json:"price"`
	MRP                  int64      `gorm:"not null;default:0"            json:"mrp"`
	Stock                int        `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	BrandID              *uuid.UUID `gorm:"type:uuid;index"               json:"brand_id,omitempty"`
	CategoryID           *uuid.UUID `gorm:"type:uuid;index"               json:"category_id,omitempty"`
	Images               []Image    `gorm:"serializer:json;type:text"     json:"images"`
	Tags                 []string   `gorm:"serializer:json;type:text"     json:"tags"`
	RequiresPrescription bool       `gorm:"not null;default:false"        json:"requires_prescription"`
	IsActive             bool       `gorm:"not null"                     json:"is_active"`

	Brand    *Brand    `gorm:"foreignKey:BrandID"    json:"brand,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

type CartItem struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"                json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type WishlistItem struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;not null" json:"product_id"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
