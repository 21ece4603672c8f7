package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// UpdateCouponRequest represents the request body for updating a coupon.
// The code and type of an existing coupon cannot be changed.
type UpdateCouponRequest struct {
	Value             *float64             `json:"value"`
	MaxDiscountAmount *float64             `json:"max_discount_amount"`
	MinPurchaseAmount *float64             `json:"min_purchase_amount"`
	Scope             *string              `json:"scope"`
	ScopeItemType     *string              `json:"scope_item_type"`
	ScopeItems        *[]models.CouponItem `json:"scope_items"`
	StartDate         *time.Time           `json:"start_date"`
	EndDate           *time.Time           `json:"end_date"`
	UsageLimit        *int                 `json:"usage_limit"`
	PerUserLimit      *int                 `json:"per_user_limit"`
	Active            *bool                `json:"active"`
}

// PUT /admin/coupons/:id
// UpdateCoupon updates an existing coupon
func UpdateCoupon(c *gin.Context) {
	utils.LogInfo("UpdateCoupon called")

	couponID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.LogError("Invalid coupon ID: %v", err)
		utils.BadRequest(c, "Invalid coupon ID", nil)
		return
	}

	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var coupon models.Coupon
	if err := config.DB.First(&coupon, couponID).Error; err != nil {
		utils.LogError("Coupon not found: %d", couponID)
		utils.NotFound(c, "Coupon not found")
		return
	}
	utils.LogInfo("Updating coupon %s (ID: %d)", coupon.Code, coupon.ID)

	if req.Value != nil {
		if *req.Value <= 0 {
			utils.BadRequest(c, "Value must be greater than zero", nil)
			return
		}
		if coupon.Type == models.CouponTypePercentage && *req.Value > 100 {
			utils.BadRequest(c, "Percentage value cannot exceed 100", nil)
			return
		}
		coupon.Value = *req.Value
	}
	if req.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = *req.MaxDiscountAmount
	}
	if req.MinPurchaseAmount != nil {
		coupon.MinPurchaseAmount = *req.MinPurchaseAmount
	}
	if req.Scope != nil {
		switch *req.Scope {
		case models.CouponScopeAll, models.CouponScopeItemType, models.CouponScopeItems:
			coupon.Scope = *req.Scope
		default:
			utils.BadRequest(c, "Invalid coupon scope", nil)
			return
		}
	}
	if req.ScopeItemType != nil {
		if *req.ScopeItemType != "" && !models.ValidItemType(*req.ScopeItemType) {
			utils.BadRequest(c, "Invalid scope item type", nil)
			return
		}
		coupon.ScopeItemType = *req.ScopeItemType
	}
	if req.ScopeItems != nil {
		for _, item := range *req.ScopeItems {
			if !models.ValidItemType(item.ItemType) {
				utils.BadRequest(c, "scope_items contains an invalid item type", nil)
				return
			}
		}
		items, err := json.Marshal(*req.ScopeItems)
		if err != nil {
			utils.LogError("Failed to encode scope items for coupon %s: %v", coupon.Code, err)
			utils.InternalServerError(c, "Failed to update coupon", nil)
			return
		}
		coupon.ScopeItems = items
	}
	if req.StartDate != nil {
		coupon.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		coupon.EndDate = *req.EndDate
	}
	if coupon.EndDate.Before(coupon.StartDate) {
		utils.BadRequest(c, "End date must be after start date", nil)
		return
	}
	if req.UsageLimit != nil {
		if *req.UsageLimit != 0 && *req.UsageLimit < coupon.UsedCount {
			utils.BadRequest(c, "Usage limit cannot be lower than the current usage count", nil)
			return
		}
		coupon.UsageLimit = *req.UsageLimit
	}
	if req.PerUserLimit != nil {
		if *req.PerUserLimit <= 0 {
			utils.BadRequest(c, "Per-user limit must be greater than zero", nil)
			return
		}
		coupon.PerUserLimit = *req.PerUserLimit
	}
	if req.Active != nil {
		coupon.Active = *req.Active
	}

	if coupon.Scope == models.CouponScopeItemType && !models.ValidItemType(coupon.ScopeItemType) {
		utils.BadRequest(c, "scope_item_type must be a valid item type for ITEM_TYPE scope", nil)
		return
	}
	if coupon.Scope == models.CouponScopeItems && len(coupon.Items()) == 0 {
		utils.BadRequest(c, "scope_items is required for ITEMS scope", nil)
		return
	}

	// used_count belongs to the redemption path; writing the value read
	// above would undo any redemption that committed in between.
	if err := config.DB.Omit("used_count").Save(&coupon).Error; err != nil {
		utils.LogError("Failed to update coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to update coupon", nil)
		return
	}

	utils.LogInfo("Successfully updated coupon %s (ID: %d)", coupon.Code, coupon.ID)
	utils.Success(c, "Coupon updated successfully", formatCouponForAdmin(&coupon))
}
