package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/examsutra/ExamSutra/models"
	"gorm.io/gorm"
)

// FindPaymentByRazorpayPaymentID returns the payment previously recorded for
// a gateway payment id, if any. Used to make the verify endpoint idempotent.
func FindPaymentByRazorpayPaymentID(db *gorm.DB, razorpayPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("razorpay_payment_id = ?", razorpayPaymentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// RecordPayment writes the payment row for a verified gateway payment,
// mapping the gateway status onto the internal enum and retaining the raw
// response for audit. Must only be called after signature verification, and
// runs inside the settlement transaction. The unique index on
// razorpay_payment_id is the backstop against duplicate capture.
func RecordPayment(tx *gorm.DB, order *models.Order, detail map[string]interface{}, signature string) (*models.Payment, error) {
	status := models.PaymentStatusAuthorized
	if s, _ := detail["status"].(string); s == "captured" {
		status = models.PaymentStatusCaptured
	}

	amount := order.Amount
	if paise, ok := detail["amount"].(float64); ok {
		amount = paise / 100
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("payment detail marshal failed: %w", err)
	}

	payment := models.Payment{
		OrderID:           order.ID,
		RazorpayOrderID:   order.RazorpayOrderID,
		RazorpayPaymentID: fmt.Sprintf("%v", detail["id"]),
		Amount:            amount,
		Currency:          order.Currency,
		Status:            status,
		Signature:         signature,
		RawResponse:       raw,
	}
	if method, ok := detail["method"].(string); ok {
		payment.Method = method
	}
	if desc, ok := detail["error_description"].(string); ok {
		payment.ErrorDescription = desc
	}
	payment.History = payment.History.Append(models.PaymentStatusInitiated, "verification accepted")
	payment.History = payment.History.Append(status, "gateway status recorded")

	if err := tx.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("payment insert failed: %w", err)
	}
	return &payment, nil
}

// TransitionPayment moves a payment along one of the allowed status edges,
// appending a history entry. A CAPTURED payment is immutable except for the
// REFUNDED edge, which the transition table enforces.
func TransitionPayment(db *gorm.DB, payment *models.Payment, newStatus, note string) error {
	if !models.PaymentTransitionAllowed(payment.Status, newStatus) {
		return fmt.Errorf("illegal payment transition %s -> %s for payment %d", payment.Status, newStatus, payment.ID)
	}

	history := payment.History.Append(newStatus, note)
	res := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, payment.Status).
		Updates(map[string]interface{}{
			"status":  newStatus,
			"history": history,
		})
	if res.Error != nil {
		return fmt.Errorf("payment transition failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}

	payment.Status = newStatus
	payment.History = history
	return nil
}
