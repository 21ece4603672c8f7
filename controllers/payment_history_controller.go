package controllers

import (
	"fmt"
	"strconv"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// GET /payments/history
// Paginated list of the caller's orders, newest first.
func ListPaymentHistory(c *gin.Context) {
	utils.LogInfo("ListPaymentHistory called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	db := config.DB

	query := db.Model(&models.Order{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch payment history", nil)
		return
	}
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch payment history", nil)
		return
	}

	formatted := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		formatted = append(formatted, gin.H{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"item_type":    order.ItemType,
			"item_id":      order.ItemID,
			"amount":       fmt.Sprintf("%.2f", order.Amount),
			"discount":     fmt.Sprintf("%.2f", order.DiscountAmount),
			"coupon_code":  order.CouponCode,
			"currency":     order.Currency,
			"status":       order.Status,
			"valid_until":  order.ValidUntil.Format("2006-01-02"),
			"created_at":   order.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.SendPaginatedResponse(c, "Payment history retrieved successfully", formatted, pagination)
}

// GET /payments/active-purchases
// The caller's currently ACTIVE entitlements.
func ListActivePurchases(c *gin.Context) {
	utils.LogInfo("ListActivePurchases called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var purchases []models.UserPurchase
	if err := config.DB.
		Where("user_id = ? AND status = ?", user.ID, models.PurchaseStatusActive).
		Order("expires_at ASC").
		Find(&purchases).Error; err != nil {
		utils.LogError("Failed to fetch purchases for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch purchases", nil)
		return
	}

	formatted := make([]gin.H, 0, len(purchases))
	for _, p := range purchases {
		formatted = append(formatted, gin.H{
			"id":           p.ID,
			"item_type":    p.ItemType,
			"item_id":      p.ItemID,
			"order_id":     p.OrderID,
			"purchased_at": p.PurchasedAt.Format("2006-01-02 15:04:05"),
			"expires_at":   p.ExpiresAt.Format("2006-01-02"),
			"status":       p.Status,
		})
	}

	utils.Success(c, "Active purchases retrieved successfully", gin.H{
		"purchases": formatted,
		"count":     len(formatted),
	})
}

// GET /payments/check/:item_type/:item_id
//
// Ownership check. A free test series is owned by everyone; a paid test
// series is owned through its own purchase or through the parent exam plan.
func CheckOwnership(c *gin.Context) {
	utils.LogInfo("CheckOwnership called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	itemType := c.Param("item_type")
	itemIDParam, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	if err != nil {
		utils.LogError("Invalid item id %q for user ID: %d", c.Param("item_id"), user.ID)
		utils.BadRequest(c, "Invalid item id", nil)
		return
	}
	itemID := uint(itemIDParam)

	if !models.ValidItemType(itemType) {
		utils.BadRequest(c, utils.ErrInvalidItemType, nil)
		return
	}

	db := config.DB
	item, err := utils.GetCatalogItem(db, itemType, itemID)
	if err != nil {
		if err == utils.ErrItemNotFound {
			utils.NotFound(c, "Item not found")
			return
		}
		utils.LogError("Catalog lookup failed for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to resolve item", nil)
		return
	}

	if item.IsFree {
		utils.Success(c, "Ownership checked", gin.H{
			"owned": true,
			"via":   "free",
		})
		return
	}

	owned, err := utils.HasActiveEntitlement(db, user.ID, itemType, itemID)
	if err != nil {
		utils.LogError("Entitlement check failed for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to check ownership", nil)
		return
	}

	via := ""
	if owned {
		via = "purchase"
		direct, err := utils.HasDirectEntitlement(db, user.ID, itemType, itemID)
		if err == nil && !direct {
			via = "parent_plan"
		}
	}

	utils.Success(c, "Ownership checked", gin.H{
		"owned": owned,
		"via":   via,
	})
}
