package utils

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/examsutra/ExamSutra/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasActiveEntitlementDirect(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	owned, err := HasActiveEntitlement(db, 10, models.ItemTypeExamPlan, 3)
	require.NoError(t, err)
	assert.True(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveEntitlementNone(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	owned, err := HasActiveEntitlement(db, 10, models.ItemTypeExamPlan, 3)
	require.NoError(t, err)
	assert.False(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveEntitlementViaParentPlan(t *testing.T) {
	db, mock := newMockDB(t)

	// no direct test-series purchase
	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// the series belongs to exam plan 4
	mock.ExpectQuery(`SELECT \* FROM "test_series"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "exam_plan_id"}).AddRow(9, 4))

	// the user owns the parent plan
	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	owned, err := HasActiveEntitlement(db, 10, models.ItemTypeTestSeries, 9)
	require.NoError(t, err)
	assert.True(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveEntitlementStandaloneSeries(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// series without a parent plan; no substitution possible
	mock.ExpectQuery(`SELECT \* FROM "test_series"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "exam_plan_id"}).AddRow(9, 0))

	owned, err := HasActiveEntitlement(db, 10, models.ItemTypeTestSeries, 9)
	require.NoError(t, err)
	assert.False(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasDirectEntitlementChecksExpiry(t *testing.T) {
	db, mock := newMockDB(t)

	// the predicate must exclude lapsed ACTIVE rows
	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_purchases" WHERE \(user_id = .* AND status = .* AND expires_at >`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	owned, err := HasDirectEntitlement(db, 10, models.ItemTypeExamPlan, 3)
	require.NoError(t, err)
	assert.False(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivatePurchaseDemotesLapsedEntitlement(t *testing.T) {
	db, mock := newMockDB(t)

	order := &models.Order{
		ID:         5,
		UserID:     10,
		ItemType:   models.ItemTypeExamPlan,
		ItemID:     3,
		Status:     models.OrderStatusPaid,
		ValidUntil: time.Now().AddDate(0, 0, 30),
	}
	payment := &models.Payment{ID: 9, OrderID: 5, Status: models.PaymentStatusCaptured}

	// an ACTIVE row whose expiry has passed still occupies the one-active
	// index slot until it is demoted
	lapsed := sqlmock.NewRows([]string{"id", "user_id", "item_type", "item_id", "status", "history"}).
		AddRow(77, 10, models.ItemTypeExamPlan, 3, models.PurchaseStatusActive, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "user_purchases" WHERE \(user_id = .* AND expires_at <=`).
		WillReturnRows(lapsed)
	mock.ExpectExec(`UPDATE "user_purchases" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(78))

	purchase, err := ActivatePurchase(db, order, payment)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusActive, purchase.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivatePurchaseNoLapsedRows(t *testing.T) {
	db, mock := newMockDB(t)

	order := &models.Order{
		ID:         5,
		UserID:     10,
		ItemType:   models.ItemTypeExamPlan,
		ItemID:     3,
		Status:     models.OrderStatusPaid,
		ValidUntil: time.Now().AddDate(0, 0, 30),
	}
	payment := &models.Payment{ID: 9, OrderID: 5, Status: models.PaymentStatusCaptured}

	mock.ExpectQuery(`SELECT \* FROM "user_purchases" WHERE \(user_id = .* AND expires_at <=`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(78))

	purchase, err := ActivatePurchase(db, order, payment)
	require.NoError(t, err)
	assert.Equal(t, order.ValidUntil, purchase.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errDuplicateKey{}))
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(assert.AnError))
}
