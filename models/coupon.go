package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Coupon discount types
const (
	CouponTypePercentage = "PERCENTAGE"
	CouponTypeFixed      = "FIXED"
)

// Coupon applicability scopes
const (
	CouponScopeAll      = "ALL"       // any item
	CouponScopeItemType = "ITEM_TYPE" // every item of one type
	CouponScopeItems    = "ITEMS"     // an explicit item list
)

// CouponItem identifies one item a scoped coupon applies to.
type CouponItem struct {
	ItemType string `json:"item_type"`
	ItemID   uint   `json:"item_id"`
}

type Coupon struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Code              string         `gorm:"uniqueIndex" json:"code"`
	Type              string         `json:"type"` // PERCENTAGE or FIXED
	Value             float64        `json:"value"`
	MaxDiscountAmount float64        `json:"max_discount_amount"` // percentage coupons only; 0 = no cap
	MinPurchaseAmount float64        `json:"min_purchase_amount"`
	Scope             string         `json:"scope"`
	ScopeItemType     string         `json:"scope_item_type,omitempty"` // for ITEM_TYPE scope
	ScopeItems        datatypes.JSON `gorm:"type:jsonb" json:"scope_items,omitempty"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	UsageLimit        int            `json:"usage_limit"` // 0 = unlimited
	PerUserLimit      int            `json:"per_user_limit"`
	UsedCount         int            `json:"used_count"`
	Active            bool           `json:"active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// Items decodes the explicit item list of an ITEMS-scoped coupon.
func (c *Coupon) Items() []CouponItem {
	if len(c.ScopeItems) == 0 {
		return nil
	}
	var items []CouponItem
	if err := json.Unmarshal(c.ScopeItems, &items); err != nil {
		return nil
	}
	return items
}

// CouponUsage is the immutable record of one coupon redemption, written
// exactly once per settled order that used a coupon.
type CouponUsage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index:idx_coupon_usages_user" json:"user_id"`
	CouponID       uint      `gorm:"index:idx_coupon_usages_user" json:"coupon_id"`
	OrderID        uint      `gorm:"uniqueIndex" json:"order_id"`
	OriginalAmount float64   `json:"original_amount"`
	DiscountAmount float64   `json:"discount_amount"`
	FinalAmount    float64   `json:"final_amount"`
	UsedAt         time.Time `json:"used_at"`
}
