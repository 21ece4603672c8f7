package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// DELETE /admin/coupons/:id
// DeleteCoupon deactivates a coupon. Redeemed usage records are kept for audit.
func DeleteCoupon(c *gin.Context) {
	utils.LogInfo("DeleteCoupon called")

	couponID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.LogError("Invalid coupon ID: %v", err)
		utils.BadRequest(c, "Invalid coupon ID", nil)
		return
	}

	var coupon models.Coupon
	if err := config.DB.First(&coupon, couponID).Error; err != nil {
		utils.LogError("Coupon not found: %d", couponID)
		utils.NotFound(c, "Coupon not found")
		return
	}

	coupon.Active = false
	if err := config.DB.Save(&coupon).Error; err != nil {
		utils.LogError("Failed to deactivate coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to delete coupon", nil)
		return
	}
	if err := config.DB.Delete(&coupon).Error; err != nil {
		utils.LogError("Failed to delete coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to delete coupon", nil)
		return
	}

	utils.LogInfo("Successfully deleted coupon %s (ID: %d)", coupon.Code, coupon.ID)
	utils.Success(c, "Coupon deleted successfully", gin.H{
		"id":   coupon.ID,
		"code": coupon.Code,
	})
}

// GET /admin/coupons
// AdminListCoupons lists all coupons with optional filters
func AdminListCoupons(c *gin.Context) {
	utils.LogInfo("AdminListCoupons called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Coupon{})

	if status := c.Query("status"); status != "" {
		switch strings.ToLower(status) {
		case "active":
			query = query.Where("active = ? AND end_date > ?", true, time.Now())
		case "inactive":
			query = query.Where("active = ?", false)
		case "expired":
			query = query.Where("end_date <= ?", time.Now())
		default:
			utils.BadRequest(c, "Invalid status filter", nil)
			return
		}
	}
	if code := c.Query("code"); code != "" {
		query = query.Where("code ILIKE ?", "%"+strings.ToUpper(code)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count coupons: %v", err)
		utils.InternalServerError(c, "Failed to fetch coupons", nil)
		return
	}
	pagination.SetTotal(total)

	var coupons []models.Coupon
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&coupons).Error; err != nil {
		utils.LogError("Failed to fetch coupons: %v", err)
		utils.InternalServerError(c, "Failed to fetch coupons", nil)
		return
	}

	formatted := make([]gin.H, 0, len(coupons))
	for i := range coupons {
		formatted = append(formatted, formatCouponForAdmin(&coupons[i]))
	}

	utils.LogInfo("Retrieved %d coupons", len(coupons))
	utils.SendPaginatedResponse(c, "Coupons retrieved successfully", formatted, pagination)
}

// GET /coupons
// ListAvailableCoupons lists coupons a user can currently apply.
// Exhausted and out-of-window coupons are excluded.
func ListAvailableCoupons(c *gin.Context) {
	utils.LogInfo("ListAvailableCoupons called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found in context")
		return
	}
	user := userVal.(models.User)

	now := time.Now()
	var coupons []models.Coupon
	if err := config.DB.
		Where("active = ? AND start_date <= ? AND end_date > ?", true, now, now).
		Where("usage_limit = 0 OR used_count < usage_limit").
		Order("end_date ASC").
		Find(&coupons).Error; err != nil {
		utils.LogError("Failed to fetch coupons for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch coupons", nil)
		return
	}

	formatted := make([]gin.H, 0, len(coupons))
	for i := range coupons {
		coupon := &coupons[i]

		var userUses int64
		if err := config.DB.Model(&models.CouponUsage{}).
			Where("coupon_id = ? AND user_id = ?", coupon.ID, user.ID).
			Count(&userUses).Error; err != nil {
			utils.LogError("Failed to count coupon usage for user %d: %v", user.ID, err)
			continue
		}
		if coupon.PerUserLimit > 0 && userUses >= int64(coupon.PerUserLimit) {
			continue
		}

		formatted = append(formatted, gin.H{
			"code":                coupon.Code,
			"type":                coupon.Type,
			"value":               coupon.Value,
			"max_discount_amount": coupon.MaxDiscountAmount,
			"min_purchase_amount": coupon.MinPurchaseAmount,
			"scope":               coupon.Scope,
			"scope_item_type":     coupon.ScopeItemType,
			"end_date":            coupon.EndDate.Format("2006-01-02"),
		})
	}

	utils.LogInfo("Retrieved %d available coupons for user %d", len(formatted), user.ID)
	utils.Success(c, "Coupons retrieved successfully", gin.H{"coupons": formatted})
}
