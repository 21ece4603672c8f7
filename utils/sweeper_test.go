package utils

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/examsutra/ExamSutra/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiredOrders(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "status", "history"}).
		AddRow(1, 10, models.OrderStatusCreated, []byte("[]")).
		AddRow(2, 11, models.OrderStatusPending, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE \(status IN`).WillReturnRows(rows)

	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := SweepExpiredOrders(db, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredOrdersSkipsConcurrentlyMoved(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "status", "history"}).
		AddRow(1, 10, models.OrderStatusCreated, []byte("[]")).
		AddRow(2, 11, models.OrderStatusPending, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE \(status IN`).WillReturnRows(rows)

	// first order was paid between the read and the update
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := SweepExpiredOrders(db, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredOrdersNothingToDo(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE \(status IN`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

	n, err := SweepExpiredOrders(db, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredPurchases(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "status", "history"}).
		AddRow(7, 10, models.PurchaseStatusActive, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "user_purchases" WHERE \(status =`).WillReturnRows(rows)

	mock.ExpectExec(`UPDATE "user_purchases" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := SweepExpiredPurchases(db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcilePaidOrders(t *testing.T) {
	db, mock := newMockDB(t)

	orderRows := sqlmock.NewRows([]string{"id", "user_id", "item_type", "item_id", "status", "valid_until", "history"}).
		AddRow(5, 10, models.ItemTypeExamPlan, 3, models.OrderStatusPaid, time.Now().AddDate(0, 0, 30), []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE \(status =`).WillReturnRows(orderRows)

	paymentRows := sqlmock.NewRows([]string{"id", "order_id", "status", "history"}).
		AddRow(9, 5, models.PaymentStatusCaptured, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE order_id =`).WillReturnRows(paymentRows)

	mock.ExpectQuery(`SELECT \* FROM "user_purchases" WHERE \(user_id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "user_purchases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	n, err := ReconcilePaidOrders(db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcilePaidOrdersSkipsAlreadyActive(t *testing.T) {
	db, mock := newMockDB(t)

	orderRows := sqlmock.NewRows([]string{"id", "user_id", "item_type", "item_id", "status", "valid_until", "history"}).
		AddRow(5, 10, models.ItemTypeExamPlan, 3, models.OrderStatusPaid, time.Now().AddDate(0, 0, 30), []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE \(status =`).WillReturnRows(orderRows)

	paymentRows := sqlmock.NewRows([]string{"id", "order_id", "status", "history"}).
		AddRow(9, 5, models.PaymentStatusCaptured, []byte("[]"))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE order_id =`).WillReturnRows(paymentRows)

	// the entitlement already exists; the partial unique index rejects the insert
	mock.ExpectQuery(`SELECT \* FROM "user_purchases" WHERE \(user_id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "user_purchases"`).
		WillReturnError(errDuplicateKey{})

	n, err := ReconcilePaidOrders(db)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type errDuplicateKey struct{}

func (errDuplicateKey) Error() string {
	return `duplicate key value violates unique constraint "idx_user_purchases_one_active" (SQLSTATE 23505)`
}
