package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderTransitionAllowed(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusCreated, OrderStatusPending},
		{OrderStatusCreated, OrderStatusPaid},
		{OrderStatusCreated, OrderStatusFailed},
		{OrderStatusCreated, OrderStatusExpired},
		{OrderStatusPending, OrderStatusPaid},
		{OrderStatusPending, OrderStatusFailed},
		{OrderStatusPending, OrderStatusExpired},
		{OrderStatusPaid, OrderStatusRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, OrderTransitionAllowed(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	forbidden := []struct{ from, to string }{
		{OrderStatusPaid, OrderStatusPending},
		{OrderStatusPaid, OrderStatusExpired},
		{OrderStatusPaid, OrderStatusPaid},
		{OrderStatusExpired, OrderStatusPaid},
		{OrderStatusFailed, OrderStatusPaid},
		{OrderStatusRefunded, OrderStatusPaid},
		{OrderStatusPending, OrderStatusCreated},
		{"UNKNOWN", OrderStatusPaid},
	}
	for _, tc := range forbidden {
		assert.False(t, OrderTransitionAllowed(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestPaymentTransitionAllowed(t *testing.T) {
	assert.True(t, PaymentTransitionAllowed(PaymentStatusInitiated, PaymentStatusCaptured))
	assert.True(t, PaymentTransitionAllowed(PaymentStatusInitiated, PaymentStatusAuthorized))
	assert.True(t, PaymentTransitionAllowed(PaymentStatusAuthorized, PaymentStatusCaptured))
	assert.True(t, PaymentTransitionAllowed(PaymentStatusCaptured, PaymentStatusRefunded))

	assert.False(t, PaymentTransitionAllowed(PaymentStatusCaptured, PaymentStatusAuthorized))
	assert.False(t, PaymentTransitionAllowed(PaymentStatusFailed, PaymentStatusCaptured))
	assert.False(t, PaymentTransitionAllowed(PaymentStatusRefunded, PaymentStatusCaptured))
}

func TestValidItemType(t *testing.T) {
	assert.True(t, ValidItemType(ItemTypeExamPlan))
	assert.True(t, ValidItemType(ItemTypeTestSeries))
	assert.False(t, ValidItemType("exam_plan"))
	assert.False(t, ValidItemType("BOOK"))
	assert.False(t, ValidItemType(""))
}

func TestStatusHistoryAppend(t *testing.T) {
	var h StatusHistory
	h = h.Append(OrderStatusCreated, "order created")
	h = h.Append(OrderStatusPaid, "payment captured")

	require.Len(t, h, 2)
	assert.Equal(t, OrderStatusCreated, h[0].Status)
	assert.Equal(t, OrderStatusPaid, h[1].Status)
	assert.Equal(t, "payment captured", h[1].Note)
	assert.False(t, h[0].ChangedAt.IsZero())
	assert.False(t, h[1].ChangedAt.Before(h[0].ChangedAt))
}

func TestStatusHistoryRoundTrip(t *testing.T) {
	h := StatusHistory{}.Append(OrderStatusCreated, "order created")

	val, err := h.Value()
	require.NoError(t, err)

	var decoded StatusHistory
	require.NoError(t, decoded.Scan(val.([]byte)))
	require.Len(t, decoded, 1)
	assert.Equal(t, OrderStatusCreated, decoded[0].Status)
	assert.Equal(t, "order created", decoded[0].Note)
}

func TestStatusHistoryScanNil(t *testing.T) {
	var h StatusHistory
	require.NoError(t, h.Scan(nil))
	assert.Empty(t, h)
}

func TestCouponItemsDecoding(t *testing.T) {
	items := []CouponItem{
		{ItemType: ItemTypeExamPlan, ItemID: 3},
		{ItemType: ItemTypeTestSeries, ItemID: 9},
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)

	coupon := Coupon{ScopeItems: raw}
	decoded := coupon.Items()
	require.Len(t, decoded, 2)
	assert.Equal(t, uint(3), decoded[0].ItemID)
	assert.Equal(t, ItemTypeTestSeries, decoded[1].ItemType)

	empty := Coupon{}
	assert.Nil(t, empty.Items())

	garbage := Coupon{ScopeItems: []byte("not json")}
	assert.Nil(t, garbage.Items())
}
