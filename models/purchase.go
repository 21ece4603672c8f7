package models

import (
	"time"

	"gorm.io/gorm"
)

// UserPurchase status constants
const (
	PurchaseStatusActive    = "ACTIVE"
	PurchaseStatusExpired   = "EXPIRED"
	PurchaseStatusCancelled = "CANCELLED"
)

// UserPurchase is the time-bounded access grant that results from a paid
// order. At most one ACTIVE purchase may exist per (user, item) pair; the
// database enforces this with a partial unique index created in InitDB.
type UserPurchase struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index:idx_user_purchases_item" json:"user_id"`
	ItemType    string         `gorm:"index:idx_user_purchases_item" json:"item_type"`
	ItemID      uint           `gorm:"index:idx_user_purchases_item" json:"item_id"`
	OrderID     uint           `gorm:"index" json:"order_id"`
	PaymentID   uint           `json:"payment_id"`
	PurchasedAt time.Time      `json:"purchased_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Status      string         `gorm:"index" json:"status"`
	History     StatusHistory  `gorm:"type:jsonb" json:"history"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
