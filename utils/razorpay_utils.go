package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

// razorpayClient returns a client built from the environment. The key and
// secret are read here and nowhere else, and are never logged.
func razorpayClient() *razorpay.Client {
	return razorpay.NewClient(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))
}

// CreateRemoteOrder creates an order with Razorpay. Amount is in paise.
func CreateRemoteOrder(amountPaise int, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	orderData := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	if len(notes) > 0 {
		orderData["notes"] = notes
	}

	rzOrder, err := razorpayClient().Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create failed: %w", err)
	}
	return rzOrder, nil
}

// VerifyPaymentSignature checks the gateway callback signature: an
// HMAC-SHA256 of "orderID|paymentID" keyed with the Razorpay secret. The
// comparison is constant-time; a mismatch is a security failure, never a
// retryable one.
func VerifyPaymentSignature(razorpayOrderID, razorpayPaymentID, signature string) bool {
	return verifySignatureWithSecret(razorpayOrderID, razorpayPaymentID, signature, os.Getenv("RAZORPAY_SECRET"))
}

func verifySignatureWithSecret(razorpayOrderID, razorpayPaymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(razorpayOrderID + "|" + razorpayPaymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// FetchPaymentDetail fetches the authoritative payment record from the
// gateway, used after signature verification to capture status, method and
// the raw response for audit.
func FetchPaymentDetail(razorpayPaymentID string) (map[string]interface{}, error) {
	payment, err := razorpayClient().Payment.Fetch(razorpayPaymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch failed: %w", err)
	}
	return payment, nil
}
