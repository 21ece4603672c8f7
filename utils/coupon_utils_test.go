package utils

import (
	"encoding/json"
	"testing"

	"github.com/examsutra/ExamSutra/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCouponDiscountPercentage(t *testing.T) {
	coupon := &models.Coupon{
		Type:              models.CouponTypePercentage,
		Value:             20,
		MaxDiscountAmount: 150,
	}

	// 20% of 1000 is 200, capped at 150
	assert.Equal(t, 150.0, ComputeCouponDiscount(coupon, 1000))

	// 20% of 500 is 100, below the cap
	assert.Equal(t, 100.0, ComputeCouponDiscount(coupon, 500))

	// no cap configured
	uncapped := &models.Coupon{Type: models.CouponTypePercentage, Value: 20}
	assert.Equal(t, 200.0, ComputeCouponDiscount(uncapped, 1000))
}

func TestComputeCouponDiscountFixed(t *testing.T) {
	coupon := &models.Coupon{
		Type:  models.CouponTypeFixed,
		Value: 500,
	}

	// fixed discount larger than the price settles the order at zero
	assert.Equal(t, 100.0, ComputeCouponDiscount(coupon, 100))

	assert.Equal(t, 500.0, ComputeCouponDiscount(coupon, 1200))
}

func TestComputeCouponDiscountNeverNegative(t *testing.T) {
	coupon := &models.Coupon{Type: models.CouponTypeFixed, Value: -50}
	assert.Equal(t, 0.0, ComputeCouponDiscount(coupon, 100))

	unknown := &models.Coupon{Type: "MYSTERY", Value: 10}
	assert.Equal(t, 0.0, ComputeCouponDiscount(unknown, 100))
}

func TestCouponAppliesTo(t *testing.T) {
	all := &models.Coupon{Scope: models.CouponScopeAll}
	assert.True(t, CouponAppliesTo(all, models.ItemTypeExamPlan, 1))
	assert.True(t, CouponAppliesTo(all, models.ItemTypeTestSeries, 99))

	byType := &models.Coupon{
		Scope:         models.CouponScopeItemType,
		ScopeItemType: models.ItemTypeExamPlan,
	}
	assert.True(t, CouponAppliesTo(byType, models.ItemTypeExamPlan, 7))
	assert.False(t, CouponAppliesTo(byType, models.ItemTypeTestSeries, 7))

	items, err := json.Marshal([]models.CouponItem{
		{ItemType: models.ItemTypeTestSeries, ItemID: 5},
	})
	require.NoError(t, err)
	byItems := &models.Coupon{
		Scope:      models.CouponScopeItems,
		ScopeItems: items,
	}
	assert.True(t, CouponAppliesTo(byItems, models.ItemTypeTestSeries, 5))
	assert.False(t, CouponAppliesTo(byItems, models.ItemTypeTestSeries, 6))
	assert.False(t, CouponAppliesTo(byItems, models.ItemTypeExamPlan, 5))

	unknown := &models.Coupon{Scope: "SOMETHING_ELSE"}
	assert.False(t, CouponAppliesTo(unknown, models.ItemTypeExamPlan, 1))
}
