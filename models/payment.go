package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment status constants
const (
	PaymentStatusInitiated  = "INITIATED"
	PaymentStatusAuthorized = "AUTHORIZED"
	PaymentStatusCaptured   = "CAPTURED"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusRefunded   = "REFUNDED"
)

var paymentTransitions = map[string][]string{
	PaymentStatusInitiated:  {PaymentStatusAuthorized, PaymentStatusCaptured, PaymentStatusFailed},
	PaymentStatusAuthorized: {PaymentStatusCaptured, PaymentStatusFailed},
	PaymentStatusCaptured:   {PaymentStatusRefunded},
}

// PaymentTransitionAllowed reports whether a payment may move from one
// status to another.
func PaymentTransitionAllowed(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Payment represents one gateway-confirmed payment tied to an Order. A row
// is created only after the gateway signature has been verified, and at most
// once per razorpay payment id.
type Payment struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	OrderID           uint           `gorm:"uniqueIndex" json:"order_id"`
	RazorpayOrderID   string         `gorm:"index" json:"razorpay_order_id"`
	RazorpayPaymentID string         `gorm:"uniqueIndex" json:"razorpay_payment_id"`
	Amount            float64        `json:"amount"`
	Currency          string         `json:"currency"`
	Status            string         `json:"status"`
	Method            string         `json:"method,omitempty"`
	Signature         string         `json:"-"`
	ErrorDescription  string         `json:"error_description,omitempty"`
	History           StatusHistory  `gorm:"type:jsonb" json:"history"`
	RawResponse       datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
