package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderFlow = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition allows one step forward along the fulfilment flow, or
// cancellation from any non-terminal state.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return orderFlow[s] == to
}

// CustomerCancellable reports whether the owner may still cancel.
func (s OrderStatus) CustomerCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Order struct {
	Base
	OrderNumber     string        `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID     `gorm:"type:uuid;index;not null"     json:"user_id"`
	Subtotal        int64         `gorm:"not null"                     json:"subtotal"`
	ShippingFee     int64         `gorm:"not null"                     json:"shipping_fee"`
	Total           int64         `gorm:"not null"                     json:"total"`
	Status          OrderStatus   `gorm:"size:20;index;not null"       json:"status"`
	PaymentMethod   PaymentMethod `gorm:"size:20;not null"             json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"size:20;not null"             json:"payment_status"`
	ShippingName    string        `gorm:"size:120;not null"            json:"shipping_name"`
	ShippingPhone   string        `gorm:"size:20;not null"             json:"shipping_phone"`
	ShippingAddress Address       `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PrescriptionID  *uuid.UUID    `gorm:"type:uuid"                    json:"prescription_id,omitempty"`
	Notes           string        `gorm:"size:500"                     json:"notes,omitempty"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	Base
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"        json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"        json:"product_id"`
	Name      string    `gorm:"size:200;not null"               json:"name"`
	UnitPrice int64     `gorm:"not null"                        json:"unit_price"`
	Quantity  int       `gorm:"not null;check:quantity > 0"     json:"quantity"`
	LineTotal int64     `gorm:"not null"                        json:"line_total"`
}
