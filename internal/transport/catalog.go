package transport

import "github.com/google/uuid"

type CreateBrandRequest struct {
	Name         string `json:"name"           validate:"required,max=120"`
	Description  string `json:"description"    validate:"max=2000"`
	LogoURL      string `json:"logo_url"       validate:"omitempty,url"`
	LogoPublicID string `json:"logo_public_id" validate:"max=255"`
	IsActive     *bool  `json:"is_active"`
}

type PatchBrandRequest struct {
	Name         *string `json:"name"           validate:"omitempty,min=1,max=120"`
	Description  *string `json:"description"    validate:"omitempty,max=2000"`
	LogoURL      *string `json:"logo_url"       validate:"omitempty,max=500"`
	LogoPublicID *string `json:"logo_public_id" validate:"omitempty,max=255"`
	IsActive     *bool   `json:"is_active"`
}

type CreateCategoryRequest struct {
	Name          string     `json:"name"            validate:"required,max=120"`
	Description   string     `json:"description"     validate:"max=2000"`
	ImageURL      string     `json:"image_url"       validate:"omitempty,url"`
	ImagePublicID string     `json:"image_public_id" validate:"max=255"`
	ParentID      *uuid.UUID `json:"parent_id"`
	IsActive      *bool      `json:"is_active"`
}

// PatchCategoryRequest moves the category when ParentID is set: an empty
// string makes it a root, a uuid re-parents it.
type PatchCategoryRequest struct {
	Name          *string `json:"name"            validate:"omitempty,min=1,max=120"`
	Description   *string `json:"description"     validate:"omitempty,max=2000"`
	ImageURL      *string `json:"image_url"       validate:"omitempty,max=500"`
	ImagePublicID *string `json:"image_public_id" validate:"omitempty,max=255"`
	ParentID      *string `json:"parent_id"`
	IsActive      *bool   `json:"is_active"`
}

type Image struct {
	URL      string `json:"url"       validate:"required,url"`
	PublicID string `json:"public_id" validate:"max=255"`
}

type CreateProductRequest struct {
	Name                 string     `json:"name"         validate:"required,max=200"`
	Description          string     `json:"description"  validate:"max=5000"`
	Composition          string     `json:"composition"  validate:"max=500"`
	Manufacturer         string     `json:"manufacturer" validate:"max=200"`
	SKU                  *string    `json:"sku"          validate:"omitempty,max=64"`
	Price                int64      `json:"price"        validate:"gte=0"`
	MRP                  int64      `json:"mrp"          validate:"gte=0"`
	Stock                int        `json:"stock"        validate:"gte=0"`
	BrandID              *uuid.UUID `json:"brand_id"`
	CategoryID           *uuid.UUID `json:"category_id"`
	Images               []Image    `json:"images"       validate:"max=10,dive"`
	Tags                 []string   `json:"tags"         validate:"max=20,dive,max=40"`
	RequiresPrescription bool       `json:"requires_prescription"`
	IsActive             *bool      `json:"is_active"`
}

type PatchProductRequest struct {
	Name                 *string    `json:"name"         validate:"omitempty,min=1,max=200"`
	Description          *string    `json:"description"  validate:"omitempty,max=5000"`
	Composition          *string    `json:"composition"  validate:"omitempty,max=500"`
	Manufacturer         *string    `json:"manufacturer" validate:"omitempty,max=200"`
	SKU                  *string    `json:"sku"          validate:"omitempty,max=64"`
	Price                *int64     `json:"price"        validate:"omitempty,gte=0"`
	MRP                  *int64     `json:"mrp"          validate:"omitempty,gte=0"`
	BrandID              *uuid.UUID `json:"brand_id"`
	CategoryID           *uuid.UUID `json:"category_id"`
	Images               *[]Image   `json:"images"       validate:"omitempty,max=10,dive"`
	Tags                 *[]string  `json:"tags"         validate:"omitempty,max=20,dive,max=40"`
	RequiresPrescription *bool      `json:"requires_prescription"`
	IsActive             *bool      `json:"is_active"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// ProductQuery carries the public listing filters.
type ProductQuery struct {
	Category string
	Brand    string
	MinPrice *int64
	MaxPrice *int64
	Rx       *bool
	InStock  bool
	Q        string
	Sort     string
}
