package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examsutra/ExamSutra/models"
	"gorm.io/gorm"
)

// CouponQuote is the result of a successful coupon validation.
type CouponQuote struct {
	Coupon         models.Coupon
	OriginalAmount float64
	DiscountAmount float64
	FinalAmount    float64
}

// ComputeCouponDiscount applies the coupon's discount rule to amount.
// Percentage discounts are capped at MaxDiscountAmount when set; fixed
// discounts are capped at the amount itself. The result is never negative
// and never exceeds amount.
func ComputeCouponDiscount(coupon *models.Coupon, amount float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponTypePercentage:
		discount = amount * coupon.Value / 100
		if coupon.MaxDiscountAmount > 0 && discount > coupon.MaxDiscountAmount {
			discount = coupon.MaxDiscountAmount
		}
	case models.CouponTypeFixed:
		discount = coupon.Value
	}
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CouponAppliesTo reports whether the coupon's scope covers the given item.
func CouponAppliesTo(coupon *models.Coupon, itemType string, itemID uint) bool {
	switch coupon.Scope {
	case models.CouponScopeAll:
		return true
	case models.CouponScopeItemType:
		return coupon.ScopeItemType == itemType
	case models.CouponScopeItems:
		for _, item := range coupon.Items() {
			if item.ItemType == itemType && item.ItemID == itemID {
				return true
			}
		}
	}
	return false
}

// ValidateCoupon runs the full validation sequence for applying a coupon to
// a purchase. Checks short-circuit in a fixed order: existence/active,
// validity window, applicability, minimum purchase, global usage ceiling,
// per-user usage ceiling. Errors are AppErrors carrying the HTTP status the
// rejection should be reported with.
func ValidateCoupon(db *gorm.DB, code string, userID uint, itemType string, itemID uint, amount float64) (*CouponQuote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var coupon models.Coupon
	if err := db.Where("code = ? AND active = ?", code, true).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Invalid or inactive coupon", nil)
		}
		return nil, fmt.Errorf("coupon lookup failed: %w", err)
	}

	now := time.Now()
	if now.Before(coupon.StartDate) {
		return nil, BadRequestError("Coupon is not active yet", nil)
	}
	if now.After(coupon.EndDate) {
		return nil, BadRequestError("Coupon has expired", nil)
	}

	if !CouponAppliesTo(&coupon, itemType, itemID) {
		return nil, BadRequestError("Coupon is not applicable to this item", nil)
	}

	if amount < coupon.MinPurchaseAmount {
		return nil, BadRequestError(
			fmt.Sprintf("Minimum purchase amount for this coupon is %.2f", coupon.MinPurchaseAmount), nil)
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, ConflictError("Coupon usage limit reached", nil)
	}

	if coupon.PerUserLimit > 0 {
		var used int64
		if err := db.Model(&models.CouponUsage{}).
			Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
			Count(&used).Error; err != nil {
			return nil, fmt.Errorf("coupon usage count failed: %w", err)
		}
		if used >= int64(coupon.PerUserLimit) {
			return nil, ConflictError("You have already used this coupon", nil)
		}
	}

	discount := ComputeCouponDiscount(&coupon, amount)
	return &CouponQuote{
		Coupon:         coupon,
		OriginalAmount: amount,
		DiscountAmount: discount,
		FinalAmount:    amount - discount,
	}, nil
}

// ErrCouponExhausted is returned by RecordCouponUsage when the conditional
// increment finds no remaining slot.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

// RecordCouponUsage burns one usage slot and writes the redemption record.
// It must run inside the settlement transaction, after the order is
// confirmed PAID. The counter increment is a conditional UPDATE so that
// concurrent redemptions racing for the last slot cannot both succeed.
func RecordCouponUsage(tx *gorm.DB, userID, couponID, orderID uint, original, discount, final float64) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", couponID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("coupon counter update failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCouponExhausted
	}

	usage := models.CouponUsage{
		UserID:         userID,
		CouponID:       couponID,
		OrderID:        orderID,
		OriginalAmount: original,
		DiscountAmount: discount,
		FinalAmount:    final,
		UsedAt:         time.Now(),
	}
	if err := tx.Create(&usage).Error; err != nil {
		return fmt.Errorf("coupon usage insert failed: %w", err)
	}
	return nil
}
