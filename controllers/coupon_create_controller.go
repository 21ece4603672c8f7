package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
)

// CreateCouponRequest represents the request body for creating a new coupon
type CreateCouponRequest struct {
	Code              string              `json:"code" binding:"required"`
	Type              string              `json:"type" binding:"required,oneof=PERCENTAGE FIXED"`
	Value             float64             `json:"value" binding:"required,gt=0"`
	MaxDiscountAmount float64             `json:"max_discount_amount"`
	MinPurchaseAmount float64             `json:"min_purchase_amount"`
	Scope             string              `json:"scope" binding:"required,oneof=ALL ITEM_TYPE ITEMS"`
	ScopeItemType     string              `json:"scope_item_type"`
	ScopeItems        []models.CouponItem `json:"scope_items"`
	StartDate         time.Time           `json:"start_date" binding:"required"`
	EndDate           time.Time           `json:"end_date" binding:"required"`
	UsageLimit        int                 `json:"usage_limit"`
	PerUserLimit      int                 `json:"per_user_limit"`
}

// POST /admin/coupons
// CreateCoupon creates a new coupon
func CreateCoupon(c *gin.Context) {
	utils.LogInfo("CreateCoupon called")

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	utils.LogInfo("Processing coupon creation with code: %s", req.Code)

	if req.Type == models.CouponTypePercentage && req.Value > 100 {
		utils.LogError("Invalid percentage value %.2f for coupon code %s", req.Value, req.Code)
		utils.BadRequest(c, "Percentage value cannot exceed 100", nil)
		return
	}

	if req.EndDate.Before(req.StartDate) {
		utils.LogError("Invalid validity window for coupon code %s", req.Code)
		utils.BadRequest(c, "End date must be after start date", nil)
		return
	}
	if req.EndDate.Before(time.Now()) {
		utils.LogError("Invalid end date for coupon code %s: date is in the past", req.Code)
		utils.BadRequest(c, "End date must be in the future", nil)
		return
	}

	switch req.Scope {
	case models.CouponScopeItemType:
		if !models.ValidItemType(req.ScopeItemType) {
			utils.BadRequest(c, "scope_item_type must be a valid item type for ITEM_TYPE scope", nil)
			return
		}
	case models.CouponScopeItems:
		if len(req.ScopeItems) == 0 {
			utils.BadRequest(c, "scope_items is required for ITEMS scope", nil)
			return
		}
		for _, item := range req.ScopeItems {
			if !models.ValidItemType(item.ItemType) {
				utils.BadRequest(c, "scope_items contains an invalid item type", nil)
				return
			}
		}
	}

	var existing models.Coupon
	if err := config.DB.Where("LOWER(code) = LOWER(?)", req.Code).First(&existing).Error; err == nil {
		utils.LogError("Coupon code already exists: %s", req.Code)
		utils.Conflict(c, "Coupon code already exists", nil)
		return
	}

	coupon := models.Coupon{
		Code:              req.Code,
		Type:              req.Type,
		Value:             req.Value,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinPurchaseAmount: req.MinPurchaseAmount,
		Scope:             req.Scope,
		ScopeItemType:     req.ScopeItemType,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		UsageLimit:        req.UsageLimit,
		PerUserLimit:      req.PerUserLimit,
		Active:            true,
	}
	if coupon.PerUserLimit == 0 {
		coupon.PerUserLimit = 1
	}
	if len(req.ScopeItems) > 0 {
		items, err := json.Marshal(req.ScopeItems)
		if err != nil {
			utils.LogError("Failed to encode scope items for coupon %s: %v", req.Code, err)
			utils.InternalServerError(c, "Failed to create coupon", nil)
			return
		}
		coupon.ScopeItems = items
	}

	if err := config.DB.Create(&coupon).Error; err != nil {
		utils.LogError("Failed to create coupon: %v", err)
		utils.InternalServerError(c, "Failed to create coupon", nil)
		return
	}

	utils.LogInfo("Successfully created coupon with code: %s, ID: %d", coupon.Code, coupon.ID)
	utils.Created(c, "Coupon created successfully", formatCouponForAdmin(&coupon))
}

func formatCouponForAdmin(coupon *models.Coupon) gin.H {
	return gin.H{
		"id":                  coupon.ID,
		"code":                coupon.Code,
		"type":                coupon.Type,
		"value":               coupon.Value,
		"max_discount_amount": coupon.MaxDiscountAmount,
		"min_purchase_amount": coupon.MinPurchaseAmount,
		"scope":               coupon.Scope,
		"scope_item_type":     coupon.ScopeItemType,
		"scope_items":         coupon.Items(),
		"start_date":          coupon.StartDate.Format("2006-01-02"),
		"end_date":            coupon.EndDate.Format("2006-01-02"),
		"usage_limit":         coupon.UsageLimit,
		"per_user_limit":      coupon.PerUserLimit,
		"used_count":          coupon.UsedCount,
		"active":              coupon.Active,
		"is_expired":          time.Now().After(coupon.EndDate),
		"created_at":          coupon.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
