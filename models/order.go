package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item type constants. Orders and purchases reference catalog items through
// an (item_type, item_id) pair so one table can point at either kind.
const (
	ItemTypeExamPlan   = "EXAM_PLAN"
	ItemTypeTestSeries = "TEST_SERIES"
)

// Order status constants
const (
	OrderStatusCreated  = "CREATED"
	OrderStatusPending  = "PENDING"
	OrderStatusPaid     = "PAID"
	OrderStatusFailed   = "FAILED"
	OrderStatusExpired  = "EXPIRED"
	OrderStatusRefunded = "REFUNDED"
)

// orderTransitions lists the allowed forward edges of the order state
// machine. Anything not listed here is an illegal transition.
var orderTransitions = map[string][]string{
	OrderStatusCreated: {OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusExpired},
	OrderStatusPending: {OrderStatusPaid, OrderStatusFailed, OrderStatusExpired},
	OrderStatusPaid:    {OrderStatusRefunded},
}

// OrderTransitionAllowed reports whether an order may move from one status
// to another.
func OrderTransitionAllowed(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidItemType reports whether t is one of the known catalog item types.
func ValidItemType(t string) bool {
	return t == ItemTypeExamPlan || t == ItemTypeTestSeries
}

// Order represents one purchase attempt, from intent to terminal status.
type Order struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"index" json:"user_id"`
	User            User              `json:"-" gorm:"foreignKey:UserID"`
	OrderNumber     string            `gorm:"uniqueIndex" json:"order_number"`
	ItemType        string            `gorm:"index:idx_orders_item" json:"item_type"`
	ItemID          uint              `gorm:"index:idx_orders_item" json:"item_id"`
	Amount          float64           `json:"amount"`
	OriginalAmount  float64           `json:"original_amount"`
	DiscountAmount  float64           `json:"discount_amount"`
	Currency        string            `json:"currency"`
	CouponID        uint              `json:"coupon_id,omitempty"`
	CouponCode      string            `json:"coupon_code,omitempty"`
	RazorpayOrderID string            `gorm:"uniqueIndex" json:"razorpay_order_id"`
	Status          string            `gorm:"index" json:"status"`
	ValidUntil      time.Time         `json:"valid_until"`
	History         StatusHistory     `gorm:"type:jsonb" json:"history"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
}
