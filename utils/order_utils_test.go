package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/examsutra/ExamSutra/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num := GenerateOrderNumber()
		assert.Regexp(t, pattern, num)
		assert.False(t, seen[num], "order number %s repeated", num)
		seen[num] = true
	}
}

func TestGenerateOrderNumberCarriesDate(t *testing.T) {
	num := GenerateOrderNumber()
	assert.Contains(t, num, time.Now().Format("20060102"))
}

func TestTransitionOrderRejectsIllegalEdge(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Status: models.OrderStatusPaid,
	}

	// illegal edges fail before any database access, so a nil db is fine
	err := TransitionOrder(nil, order, models.OrderStatusExpired, "sweep")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStaleTransition)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}

func TestTransitionPaymentRejectsIllegalEdge(t *testing.T) {
	payment := &models.Payment{
		ID:     1,
		Status: models.PaymentStatusRefunded,
	}

	err := TransitionPayment(nil, payment, models.PaymentStatusCaptured, "retry")
	require.Error(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, payment.Status)
}
