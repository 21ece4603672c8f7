package controllers

import (
	"fmt"
	"math"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// GET /admin/payments
// AdminListPayments returns all orders with their payment state, paginated.
func AdminListPayments(c *gin.Context) {
	utils.LogInfo("AdminListPayments called")

	pagination := utils.NewPagination(c)
	db := config.DB

	query := db.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if itemType := c.Query("item_type"); itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Preload("User").Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}

	formatted := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		formatted = append(formatted, gin.H{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"user_id":      order.UserID,
			"username":     order.User.Username,
			"item_type":    order.ItemType,
			"item_id":      order.ItemID,
			"amount":       fmt.Sprintf("%.2f", order.Amount),
			"discount":     fmt.Sprintf("%.2f", order.DiscountAmount),
			"coupon_code":  order.CouponCode,
			"status":       order.Status,
			"created_at":   order.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.SendPaginatedResponse(c, "Payments retrieved successfully", formatted, pagination)
}

// GET /admin/payments/statistics
// AdminPaymentStatistics aggregates order counts, revenue and discounts.
func AdminPaymentStatistics(c *gin.Context) {
	utils.LogInfo("AdminPaymentStatistics called")
	db := config.DB

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		utils.LogError("Failed to aggregate order statuses: %v", err)
		utils.InternalServerError(c, "Failed to compute statistics", nil)
		return
	}

	statusMap := gin.H{}
	var totalOrders int64
	for _, s := range byStatus {
		statusMap[s.Status] = s.Count
		totalOrders += s.Count
	}

	var revenue struct {
		TotalRevenue  float64
		TotalDiscount float64
		PaidOrders    int64
	}
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(amount),0) as total_revenue, COALESCE(SUM(discount_amount),0) as total_discount, COUNT(*) as paid_orders").
		Where("status = ?", models.OrderStatusPaid).
		Scan(&revenue).Error; err != nil {
		utils.LogError("Failed to aggregate revenue: %v", err)
		utils.InternalServerError(c, "Failed to compute statistics", nil)
		return
	}

	var activePurchases int64
	if err := db.Model(&models.UserPurchase{}).
		Where("status = ?", models.PurchaseStatusActive).
		Count(&activePurchases).Error; err != nil {
		utils.LogError("Failed to count active purchases: %v", err)
		utils.InternalServerError(c, "Failed to compute statistics", nil)
		return
	}

	var couponRedemptions int64
	if err := db.Model(&models.CouponUsage{}).Count(&couponRedemptions).Error; err != nil {
		utils.LogError("Failed to count coupon redemptions: %v", err)
		utils.InternalServerError(c, "Failed to compute statistics", nil)
		return
	}

	avgOrderValue := 0.0
	if revenue.PaidOrders > 0 {
		avgOrderValue = math.Round(revenue.TotalRevenue/float64(revenue.PaidOrders)*100) / 100
	}

	utils.Success(c, "Statistics retrieved successfully", gin.H{
		"orders": gin.H{
			"total":     totalOrders,
			"by_status": statusMap,
		},
		"revenue": gin.H{
			"total":               fmt.Sprintf("%.2f", revenue.TotalRevenue),
			"total_discount":      fmt.Sprintf("%.2f", revenue.TotalDiscount),
			"average_order_value": fmt.Sprintf("%.2f", avgOrderValue),
		},
		"active_purchases":   activePurchases,
		"coupon_redemptions": couponRedemptions,
	})
}

// POST /admin/payments/reconcile
// AdminReconcile runs the sweeper's reconciliation pass on demand.
func AdminReconcile(c *gin.Context) {
	utils.LogInfo("AdminReconcile called")

	recovered, err := utils.ReconcilePaidOrders(config.DB)
	if err != nil {
		utils.LogError("Manual reconciliation failed: %v", err)
		utils.InternalServerError(c, "Reconciliation failed", nil)
		return
	}

	utils.Success(c, "Reconciliation completed", gin.H{
		"recovered_settlements": recovered,
	})
}
