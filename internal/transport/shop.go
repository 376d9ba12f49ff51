package transport

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,gte=1,lte=100"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=100"`
}

type CartLine struct {
	ProductID            uuid.UUID `json:"product_id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	Image                string    `json:"image,omitempty"`
	UnitPrice            int64     `json:"unit_price"`
	Quantity             int       `json:"quantity"`
	LineTotal            int64     `json:"line_total"`
	Stock                int       `json:"stock"`
	RequiresPrescription bool      `json:"requires_prescription"`
	Available            bool      `json:"available"`
}

type CartView struct {
	Items                []CartLine `json:"items"`
	ItemCount            int        `json:"item_count"`
	Subtotal             int64      `json:"subtotal"`
	ShippingFee          int64      `json:"shipping_fee"`
	Total                int64      `json:"total"`
	RequiresPrescription bool       `json:"requires_prescription"`
}

type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type CheckoutRequest struct {
	ShippingName   string     `json:"shipping_name"    validate:"required,max=120"`
	ShippingPhone  string     `json:"shipping_phone"   validate:"required,max=20"`
	Address        Address    `json:"shipping_address" validate:"required"`
	PaymentMethod  string     `json:"payment_method"   validate:"required,oneof=cod online"`
	PrescriptionID *uuid.UUID `json:"prescription_id"`
	Notes          string     `json:"notes"            validate:"max=500"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid failed refunded"`
}

type ReviewPrescriptionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note"   validate:"max=500"`
}

type DeleteUploadRequest struct {
	PublicID string `json:"public_id" validate:"required,max=255"`
}

func (a Address) Model() models.Address {
	return models.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
	}
}
