package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signFor(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestSignatureVerificationAccepts(t *testing.T) {
	const secret = "test-secret"
	sig := signFor("order_Nxyz123", "pay_Nabc456", secret)

	assert.True(t, verifySignatureWithSecret("order_Nxyz123", "pay_Nabc456", sig, secret))
}

func TestSignatureVerificationIsDeterministic(t *testing.T) {
	const secret = "test-secret"
	a := signFor("order_1", "pay_1", secret)
	b := signFor("order_1", "pay_1", secret)
	assert.Equal(t, a, b)
}

func TestSignatureVerificationRejectsMutation(t *testing.T) {
	const secret = "test-secret"
	sig := signFor("order_Nxyz123", "pay_Nabc456", secret)

	// single-character change in the signature
	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	assert.False(t, verifySignatureWithSecret("order_Nxyz123", "pay_Nabc456", string(mutated), secret))

	// signature computed over different ids
	assert.False(t, verifySignatureWithSecret("order_Nxyz124", "pay_Nabc456", sig, secret))
	assert.False(t, verifySignatureWithSecret("order_Nxyz123", "pay_Nabc457", sig, secret))

	// wrong secret
	assert.False(t, verifySignatureWithSecret("order_Nxyz123", "pay_Nabc456", sig, "other-secret"))
}

func TestSignatureVerificationRejectsEmptyInputs(t *testing.T) {
	const secret = "test-secret"
	sig := signFor("order_1", "pay_1", secret)

	assert.False(t, verifySignatureWithSecret("order_1", "pay_1", "", secret))
	assert.False(t, verifySignatureWithSecret("order_1", "pay_1", sig, ""))
}
