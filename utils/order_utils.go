package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/examsutra/ExamSutra/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerateOrderNumber builds a human-readable unique order number, created
// before the database row exists so it can double as the gateway receipt.
func GenerateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// CreateOrder writes a new order in status CREATED with its first history
// entry. ValidUntil is fixed here from the catalog validity window and is
// never recomputed afterwards.
func CreateOrder(db *gorm.DB, userID uint, item *CatalogItem, quote *CouponQuote, orderNumber, currency, razorpayOrderID string) (*models.Order, error) {
	amount := item.Price
	order := models.Order{
		UserID:          userID,
		OrderNumber:     orderNumber,
		ItemType:        item.ItemType,
		ItemID:          item.ItemID,
		OriginalAmount:  amount,
		Amount:          amount,
		Currency:        currency,
		RazorpayOrderID: razorpayOrderID,
		Status:          models.OrderStatusCreated,
		ValidUntil:      time.Now().AddDate(0, 0, item.ValidityDays),
	}
	if quote != nil {
		order.CouponID = quote.Coupon.ID
		order.CouponCode = quote.Coupon.Code
		order.DiscountAmount = quote.DiscountAmount
		order.Amount = quote.FinalAmount
	}
	order.History = order.History.Append(models.OrderStatusCreated, "order created")

	if err := db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("order create failed: %w", err)
	}
	return &order, nil
}

// TransitionOrder moves an order along one of the allowed status edges,
// appending a history entry. The UPDATE is conditioned on the status the
// order was read with, so a concurrent transition makes this a no-op
// (RowsAffected 0) instead of a lost update; callers that care check the
// returned stale flag via ErrStaleTransition.
var ErrStaleTransition = fmt.Errorf("entity status changed concurrently")

func TransitionOrder(db *gorm.DB, order *models.Order, newStatus, note string) error {
	if !models.OrderTransitionAllowed(order.Status, newStatus) {
		return fmt.Errorf("illegal order transition %s -> %s for order %d", order.Status, newStatus, order.ID)
	}

	history := order.History.Append(newStatus, note)
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(map[string]interface{}{
			"status":  newStatus,
			"history": history,
		})
	if res.Error != nil {
		return fmt.Errorf("order transition failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}

	order.Status = newStatus
	order.History = history
	return nil
}

// FindOrderByRazorpayOrderID looks up an order by its gateway order id.
// Soft-deleted orders are excluded by default.
func FindOrderByRazorpayOrderID(db *gorm.DB, razorpayOrderID string) (*models.Order, error) {
	var order models.Order
	if err := db.Where("razorpay_order_id = ?", razorpayOrderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
