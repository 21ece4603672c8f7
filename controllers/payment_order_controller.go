package controllers

import (
	"fmt"
	"math"
	"os"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents the request body for starting a purchase
type CreateOrderRequest struct {
	ItemType   string `json:"item_type" binding:"required"`
	ItemID     uint   `json:"item_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// POST /payments/order
//
// Settlement step 1: reject if the caller already owns the item, price it
// (optionally through a coupon), create the Razorpay order, then write the
// local order in status CREATED. No ledger beyond the order is touched here.
func CreatePaymentOrder(c *gin.Context) {
	utils.LogInfo("CreatePaymentOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	userID := user.ID

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request. item_type and item_id are required", err.Error())
		return
	}

	if !models.ValidItemType(req.ItemType) {
		utils.LogError("Invalid item type %q for user ID: %d", req.ItemType, userID)
		utils.BadRequest(c, utils.ErrInvalidItemType, nil)
		return
	}

	db := config.DB

	item, err := utils.GetCatalogItem(db, req.ItemType, req.ItemID)
	if err != nil {
		if err == utils.ErrItemNotFound {
			utils.LogError("Item not found: %s/%d for user ID: %d", req.ItemType, req.ItemID, userID)
			utils.NotFound(c, "Item not found")
			return
		}
		utils.LogError("Catalog lookup failed for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to resolve item", nil)
		return
	}

	if item.IsFree {
		utils.LogError("Purchase attempted for free item %s/%d by user ID: %d", item.ItemType, item.ItemID, userID)
		utils.BadRequest(c, "This item is free and does not require payment", nil)
		return
	}

	owned, err := utils.HasActiveEntitlement(db, userID, item.ItemType, item.ItemID)
	if err != nil {
		utils.LogError("Entitlement check failed for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to check existing purchases", nil)
		return
	}
	if owned {
		utils.LogError("Duplicate purchase attempt for %s/%d by user ID: %d", item.ItemType, item.ItemID, userID)
		utils.Conflict(c, utils.ErrAlreadyPurchased, nil)
		return
	}

	amount := item.Price
	var quote *utils.CouponQuote
	if req.CouponCode != "" {
		quote, err = utils.ValidateCoupon(db, req.CouponCode, userID, item.ItemType, item.ItemID, amount)
		if err != nil {
			if appErr := utils.GetAppError(err); appErr != nil {
				utils.LogError("Coupon %q rejected for user ID: %d: %s", req.CouponCode, userID, appErr.Message)
				utils.Error(c, appErr.Code, appErr.Message, nil)
				return
			}
			utils.LogError("Coupon validation failed for user ID: %d: %v", userID, err)
			utils.InternalServerError(c, "Failed to validate coupon", nil)
			return
		}
		amount = quote.FinalAmount
		utils.LogInfo("Coupon %s applied for user ID: %d, discount: %.2f", quote.Coupon.Code, userID, quote.DiscountAmount)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Config load failed: %v", err)
		utils.InternalServerError(c, "Payment gateway not configured", nil)
		return
	}

	// Razorpay expects the amount in paise.
	amountPaise := int(math.Round(amount * 100))
	orderNumber := utils.GenerateOrderNumber()

	rzOrder, err := utils.CreateRemoteOrder(amountPaise, cfg.Currency, orderNumber, map[string]interface{}{
		"item_type": item.ItemType,
		"item_id":   item.ItemID,
	})
	if err != nil {
		utils.LogError("Failed to create Razorpay order for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to create payment order, please try again", nil)
		return
	}
	razorpayOrderID := fmt.Sprintf("%v", rzOrder["id"])
	utils.LogInfo("Created Razorpay order %s for user ID: %d", razorpayOrderID, userID)

	order, err := utils.CreateOrder(db, userID, item, quote, orderNumber, cfg.Currency, razorpayOrderID)
	if err != nil {
		utils.LogError("Failed to create order for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}
	utils.LogInfo("Created order %s (ID: %d) for user ID: %d, amount: %.2f", order.OrderNumber, order.ID, userID, order.Amount)

	utils.Created(c, "Order created successfully", gin.H{
		"order": gin.H{
			"id":                order.ID,
			"order_number":      order.OrderNumber,
			"item_type":         order.ItemType,
			"item_id":           order.ItemID,
			"amount":            fmt.Sprintf("%.2f", order.Amount),
			"original_amount":   fmt.Sprintf("%.2f", order.OriginalAmount),
			"discount":          fmt.Sprintf("%.2f", order.DiscountAmount),
			"currency":          order.Currency,
			"razorpay_order_id": order.RazorpayOrderID,
			"valid_until":       order.ValidUntil.Format("2006-01-02"),
		},
		"key": os.Getenv("RAZORPAY_KEY"),
		"prefill": gin.H{
			"name":    user.FirstName + " " + user.LastName,
			"email":   user.Email,
			"contact": user.Phone,
		},
	})
}
