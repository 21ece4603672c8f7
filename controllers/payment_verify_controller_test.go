package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/examsutra/ExamSutra/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func gatewaySignature(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func newVerifyRouter(user models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/payments/verify", func(c *gin.Context) {
		c.Set("user", user)
		VerifyPayment(c)
	})
	return router
}

func postVerify(t *testing.T, router *gin.Engine, orderID, paymentID, signature string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"razorpay_order_id":%q,"razorpay_payment_id":%q,"razorpay_signature":%q}`,
		orderID, paymentID, signature)
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// A second verify call for an already-recorded payment answers from the
// ledger: no payment, purchase or coupon rows are written again.
func TestVerifyPaymentRepeatReturnsExistingSettlement(t *testing.T) {
	const secret = "test-secret"
	t.Setenv("RAZORPAY_SECRET", secret)
	mock := useMockDB(t)

	user := models.User{Model: gorm.Model{ID: 10}, Email: "buyer@example.com", FirstName: "Buyer"}
	router := newVerifyRouter(user)

	orderRows := sqlmock.NewRows([]string{"id", "user_id", "order_number", "razorpay_order_id", "status", "history"}).
		AddRow(5, 10, "ORD-20260901-1A2B3C4D", "order_X1", models.OrderStatusPaid, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE razorpay_order_id =`).WillReturnRows(orderRows)

	paymentRows := sqlmock.NewRows([]string{"id", "order_id", "razorpay_payment_id", "status", "history"}).
		AddRow(9, 5, "pay_Y1", models.PaymentStatusCaptured, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE razorpay_payment_id =`).WillReturnRows(paymentRows)

	purchaseRows := sqlmock.NewRows([]string{"id", "order_id", "status", "expires_at", "history"}).
		AddRow(7, 5, models.PurchaseStatusActive, time.Now().AddDate(0, 0, 30), []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "user_purchases" WHERE order_id =`).WillReturnRows(purchaseRows)

	w := postVerify(t, router, "order_X1", "pay_Y1", gatewaySignature("order_X1", "pay_Y1", secret))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			OrderID    uint   `json:"order_id"`
			PaymentID  uint   `json:"payment_id"`
			PurchaseID uint   `json:"purchase_id"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, uint(5), resp.Data.OrderID)
	assert.Equal(t, uint(9), resp.Data.PaymentID)
	assert.Equal(t, uint(7), resp.Data.PurchaseID)
	assert.Equal(t, models.PurchaseStatusActive, resp.Data.Status)

	// three reads, zero writes
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A payment id already recorded against a different order is a conflict,
// never a second settlement.
func TestVerifyPaymentRejectsPaymentFromAnotherOrder(t *testing.T) {
	const secret = "test-secret"
	t.Setenv("RAZORPAY_SECRET", secret)
	mock := useMockDB(t)

	user := models.User{Model: gorm.Model{ID: 10}, Email: "buyer@example.com", FirstName: "Buyer"}
	router := newVerifyRouter(user)

	orderRows := sqlmock.NewRows([]string{"id", "user_id", "order_number", "razorpay_order_id", "status", "history"}).
		AddRow(5, 10, "ORD-20260901-1A2B3C4D", "order_X1", models.OrderStatusCreated, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE razorpay_order_id =`).WillReturnRows(orderRows)

	paymentRows := sqlmock.NewRows([]string{"id", "order_id", "razorpay_payment_id", "status", "history"}).
		AddRow(9, 6, "pay_Y1", models.PaymentStatusCaptured, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE razorpay_payment_id =`).WillReturnRows(paymentRows)

	w := postVerify(t, router, "order_X1", "pay_Y1", gatewaySignature("order_X1", "pay_Y1", secret))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A bad signature is rejected before any database access.
func TestVerifyPaymentRejectsBadSignatureWithoutReads(t *testing.T) {
	const secret = "test-secret"
	t.Setenv("RAZORPAY_SECRET", secret)
	mock := useMockDB(t)

	user := models.User{Model: gorm.Model{ID: 10}, Email: "buyer@example.com", FirstName: "Buyer"}
	router := newVerifyRouter(user)

	w := postVerify(t, router, "order_X1", "pay_Y1", gatewaySignature("order_X1", "pay_OTHER", secret))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A caller cannot settle someone else's order.
func TestVerifyPaymentRejectsForeignOrder(t *testing.T) {
	const secret = "test-secret"
	t.Setenv("RAZORPAY_SECRET", secret)
	mock := useMockDB(t)

	user := models.User{Model: gorm.Model{ID: 11}, Email: "other@example.com", FirstName: "Other"}
	router := newVerifyRouter(user)

	orderRows := sqlmock.NewRows([]string{"id", "user_id", "order_number", "razorpay_order_id", "status", "history"}).
		AddRow(5, 10, "ORD-20260901-1A2B3C4D", "order_X1", models.OrderStatusCreated, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE razorpay_order_id =`).WillReturnRows(orderRows)

	w := postVerify(t, router, "order_X1", "pay_Y1", gatewaySignature("order_X1", "pay_Y1", secret))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
