package controllers

import (
	"errors"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VerifyPaymentRequest represents the gateway verification callback
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// POST /payments/verify
//
// Settlement step 2. Signature and ownership checks happen before any
// write; the commit phase (payment, order transition, entitlement, coupon
// usage) runs in a single transaction. Calling this twice with the same
// payment id returns the already-settled result instead of writing again.
func VerifyPayment(c *gin.Context) {
	utils.LogInfo("VerifyPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	userID := user.ID

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid verify request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	// Security gate first. A bad signature mutates nothing and gets a
	// deliberately generic message.
	if !utils.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		utils.LogError("Signature verification failed for razorpay order %s, user ID: %d", req.RazorpayOrderID, userID)
		utils.Unauthorized(c, "Payment verification failed")
		return
	}

	db := config.DB

	order, err := utils.FindOrderByRazorpayOrderID(db, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Order not found for razorpay order %s, user ID: %d", req.RazorpayOrderID, userID)
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("Order lookup failed for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to look up order", nil)
		return
	}

	if order.UserID != userID {
		utils.LogError("Ownership mismatch: order %d belongs to user %d, caller is user %d", order.ID, order.UserID, userID)
		utils.Forbidden(c, "You are not allowed to verify this payment")
		return
	}

	// Idempotency: a repeated callback for an already-recorded payment is
	// answered from the ledger, with no further writes.
	if existing, err := utils.FindPaymentByRazorpayPaymentID(db, req.RazorpayPaymentID); err != nil {
		utils.LogError("Payment lookup failed for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to look up payment", nil)
		return
	} else if existing != nil {
		if existing.OrderID != order.ID {
			utils.LogError("Payment %s already recorded against order %d, not order %d", req.RazorpayPaymentID, existing.OrderID, order.ID)
			utils.Conflict(c, "This payment has already been recorded for another order", nil)
			return
		}
		var purchase models.UserPurchase
		if err := db.Where("order_id = ?", order.ID).First(&purchase).Error; err != nil {
			utils.LogError("Settled order %d has no purchase record: %v", order.ID, err)
			utils.InternalServerError(c, "Settlement incomplete, please contact support", nil)
			return
		}
		utils.LogInfo("Repeated verification for payment %s on order %d; returning existing settlement", req.RazorpayPaymentID, order.ID)
		respondSettled(c, order, existing, &purchase)
		return
	}

	if order.Status != models.OrderStatusCreated && order.Status != models.OrderStatusPending {
		utils.LogError("Order %d is %s and cannot be settled", order.ID, order.Status)
		utils.Conflict(c, "This order can no longer be paid", nil)
		return
	}

	// Authoritative state comes from the gateway, not the callback. This
	// happens before any write so a gateway failure commits nothing.
	detail, err := utils.FetchPaymentDetail(req.RazorpayPaymentID)
	if err != nil {
		utils.LogError("Failed to fetch payment detail for %s: %v", req.RazorpayPaymentID, err)
		utils.InternalServerError(c, "Payment gateway error, please try again", nil)
		return
	}

	var (
		payment  *models.Payment
		purchase *models.UserPurchase
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		// Re-check the entitlement inside the transaction: two racing
		// settlements may both have passed the step-1 check.
		owned, err := utils.HasActiveEntitlement(tx, userID, order.ItemType, order.ItemID)
		if err != nil {
			return err
		}
		if owned {
			return utils.ErrAlreadyActive
		}

		payment, err = utils.RecordPayment(tx, order, detail, req.RazorpaySignature)
		if err != nil {
			return err
		}

		if err := utils.TransitionOrder(tx, order, models.OrderStatusPaid, "payment verified"); err != nil {
			return err
		}

		purchase, err = utils.ActivatePurchase(tx, order, payment)
		if err != nil {
			return err
		}

		if order.CouponID != 0 {
			if err := utils.RecordCouponUsage(tx, userID, order.CouponID, order.ID,
				order.OriginalAmount, order.DiscountAmount, order.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrAlreadyActive):
			utils.LogError("Concurrent settlement detected for order %d, user ID: %d", order.ID, userID)
			utils.Conflict(c, utils.ErrAlreadyPurchased, nil)
		case errors.Is(err, utils.ErrCouponExhausted):
			utils.LogError("Coupon %d exhausted while settling order %d", order.CouponID, order.ID)
			utils.Conflict(c, "Coupon usage limit reached", nil)
		case errors.Is(err, utils.ErrStaleTransition):
			utils.LogError("Order %d was settled concurrently", order.ID)
			utils.Conflict(c, "This order has already been processed", nil)
		default:
			utils.LogError("Settlement failed for order %d: %v", order.ID, err)
			utils.InternalServerError(c, "Failed to complete settlement", nil)
		}
		return
	}
	utils.LogInfo("Settled order %d: payment %d, purchase %d, user ID: %d", order.ID, payment.ID, purchase.ID, userID)

	go func(email, name string, order models.Order, purchase models.UserPurchase) {
		itemName := order.ItemType
		if item, err := utils.GetCatalogItem(config.DB, order.ItemType, order.ItemID); err == nil {
			itemName = item.Name
		}
		if err := utils.SendPurchaseConfirmation(email, name, itemName, &order, &purchase); err != nil {
			utils.LogError("Failed to send purchase confirmation for order %d: %v", order.ID, err)
		}
	}(user.Email, user.FirstName, *order, *purchase)

	respondSettled(c, order, payment, purchase)
}

func respondSettled(c *gin.Context, order *models.Order, payment *models.Payment, purchase *models.UserPurchase) {
	utils.Success(c, "Payment verified and purchase activated", gin.H{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"payment_id":   payment.ID,
		"purchase_id":  purchase.ID,
		"status":       purchase.Status,
		"expiry_date":  purchase.ExpiresAt.Format("2006-01-02"),
	})
}
