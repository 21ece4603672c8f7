package controllers

import (
	"fmt"
	"strconv"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// GET /admin/coupons/:id/stats
// CouponStatistics returns aggregate redemption figures for one coupon
func CouponStatistics(c *gin.Context) {
	utils.LogInfo("CouponStatistics called")

	couponID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.LogError("Invalid coupon ID: %v", err)
		utils.BadRequest(c, "Invalid coupon ID", nil)
		return
	}

	var coupon models.Coupon
	if err := config.DB.Unscoped().First(&coupon, couponID).Error; err != nil {
		utils.LogError("Coupon not found: %d", couponID)
		utils.NotFound(c, "Coupon not found")
		return
	}

	var totals struct {
		Redemptions   int64
		TotalDiscount float64
		TotalRevenue  float64
	}
	if err := config.DB.Model(&models.CouponUsage{}).
		Select("COUNT(*) as redemptions, COALESCE(SUM(discount_amount), 0) as total_discount, COALESCE(SUM(final_amount), 0) as total_revenue").
		Where("coupon_id = ?", coupon.ID).
		Scan(&totals).Error; err != nil {
		utils.LogError("Failed to aggregate usage for coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to fetch coupon statistics", nil)
		return
	}

	var uniqueUsers int64
	if err := config.DB.Model(&models.CouponUsage{}).
		Where("coupon_id = ?", coupon.ID).
		Distinct("user_id").
		Count(&uniqueUsers).Error; err != nil {
		utils.LogError("Failed to count unique users for coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to fetch coupon statistics", nil)
		return
	}

	remaining := "unlimited"
	if coupon.UsageLimit > 0 {
		left := coupon.UsageLimit - coupon.UsedCount
		if left < 0 {
			left = 0
		}
		remaining = fmt.Sprintf("%d", left)
	}

	utils.LogInfo("Retrieved statistics for coupon %s: %d redemptions", coupon.Code, totals.Redemptions)
	utils.Success(c, "Coupon statistics retrieved successfully", gin.H{
		"coupon": gin.H{
			"id":          coupon.ID,
			"code":        coupon.Code,
			"type":        coupon.Type,
			"value":       coupon.Value,
			"usage_limit": coupon.UsageLimit,
			"used_count":  coupon.UsedCount,
			"active":      coupon.Active,
		},
		"statistics": gin.H{
			"redemptions":    totals.Redemptions,
			"unique_users":   uniqueUsers,
			"total_discount": fmt.Sprintf("%.2f", totals.TotalDiscount),
			"total_revenue":  fmt.Sprintf("%.2f", totals.TotalRevenue),
			"remaining_uses": remaining,
		},
	})
}

// GET /admin/coupons/:id/usage
// CouponUsageHistory lists individual redemptions of one coupon
func CouponUsageHistory(c *gin.Context) {
	utils.LogInfo("CouponUsageHistory called")

	couponID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.LogError("Invalid coupon ID: %v", err)
		utils.BadRequest(c, "Invalid coupon ID", nil)
		return
	}

	var coupon models.Coupon
	if err := config.DB.Unscoped().First(&coupon, couponID).Error; err != nil {
		utils.LogError("Coupon not found: %d", couponID)
		utils.NotFound(c, "Coupon not found")
		return
	}

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.CouponUsage{}).Where("coupon_id = ?", coupon.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count usage for coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to fetch coupon usage", nil)
		return
	}
	pagination.SetTotal(total)

	var usages []models.CouponUsage
	if err := query.Order("used_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&usages).Error; err != nil {
		utils.LogError("Failed to fetch usage for coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to fetch coupon usage", nil)
		return
	}

	formatted := make([]gin.H, 0, len(usages))
	for _, usage := range usages {
		formatted = append(formatted, gin.H{
			"id":              usage.ID,
			"user_id":         usage.UserID,
			"order_id":        usage.OrderID,
			"original_amount": fmt.Sprintf("%.2f", usage.OriginalAmount),
			"discount_amount": fmt.Sprintf("%.2f", usage.DiscountAmount),
			"final_amount":    fmt.Sprintf("%.2f", usage.FinalAmount),
			"used_at":         usage.UsedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.LogInfo("Retrieved %d usage records for coupon %s", len(usages), coupon.Code)
	utils.SendPaginatedResponse(c, "Coupon usage retrieved successfully", formatted, pagination)
}
