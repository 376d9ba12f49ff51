// Package events defines the payloads published to Kafka and the
// producer/consumer that carry them.
package events

import (
	"encoding/json"
	"fmt"
)

const (
	TopicUsers         = "user_events"
	TopicProducts      = "product_events"
	TopicOrders        = "order_events"
	TopicPrescriptions = "prescription_events"
)

const (
	TypeUserRegistered = "user_registered"
	TypeUserVerified   = "user_verified"

	TypeProductCreated = "product_created"
	TypeProductUpdated = "product_updated"
	TypeProductDeleted = "product_deleted"
	TypeProductRestock = "product_stock_adjusted"

	TypeOrderPlaced         = "order_placed"
	TypeOrderStatusChanged  = "order_status_changed"
	TypeOrderPaymentChanged = "order_payment_changed"

	TypePrescriptionUploaded = "prescription_uploaded"
	TypePrescriptionReviewed = "prescription_reviewed"
)

// Contact carries what the notifier needs to reach a customer.
type Contact struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type UserEvent struct {
	Type string `json:"type"`
	Contact
}

type ProductEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Stock     int    `json:"stock"`
	Delta     int    `json:"delta,omitempty"`
}

type OrderEvent struct {
	Type          string `json:"type"`
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PrevStatus    string `json:"prev_status,omitempty"`
	PaymentStatus string `json:"payment_status"`
	Total         int64  `json:"total"`
	Contact
}

type PrescriptionEvent struct {
	Type           string `json:"type"`
	PrescriptionID string `json:"prescription_id"`
	Status         string `json:"status"`
	Note           string `json:"note,omitempty"`
	Contact
}

// Envelope is the minimal shape shared by every payload.
type Envelope struct {
	Type string `json:"type"`
}

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
