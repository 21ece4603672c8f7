package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examsutra/ExamSutra/models"
	"gorm.io/gorm"
)

// HasActiveEntitlement reports whether the user currently holds an ACTIVE,
// unexpired purchase of the item. For a test series, ownership of the parent
// exam plan counts: the plan bundles its series.
func HasActiveEntitlement(db *gorm.DB, userID uint, itemType string, itemID uint) (bool, error) {
	owned, err := hasDirectEntitlement(db, userID, itemType, itemID)
	if err != nil || owned {
		return owned, err
	}

	if itemType == models.ItemTypeTestSeries {
		var series models.TestSeries
		if err := db.First(&series, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		if series.ExamPlanID != 0 {
			return hasDirectEntitlement(db, userID, models.ItemTypeExamPlan, series.ExamPlanID)
		}
	}
	return false, nil
}

// HasDirectEntitlement reports whether the user owns the item itself,
// without the parent-plan substitution.
func HasDirectEntitlement(db *gorm.DB, userID uint, itemType string, itemID uint) (bool, error) {
	return hasDirectEntitlement(db, userID, itemType, itemID)
}

func hasDirectEntitlement(db *gorm.DB, userID uint, itemType string, itemID uint) (bool, error) {
	var count int64
	err := db.Model(&models.UserPurchase{}).
		Where("user_id = ? AND item_type = ? AND item_id = ? AND status = ? AND expires_at > ?",
			userID, itemType, itemID, models.PurchaseStatusActive, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("entitlement lookup failed: %w", err)
	}
	return count > 0, nil
}

// ActivatePurchase creates the entitlement for a settled order. The expiry
// is copied from the order's valid-until, fixed at order creation. A
// violation of the one-active-per-item index surfaces as ErrAlreadyActive so
// the caller can report a conflict instead of duplicating access.
var ErrAlreadyActive = errors.New("an active purchase already exists for this item")

func ActivatePurchase(tx *gorm.DB, order *models.Order, payment *models.Payment) (*models.UserPurchase, error) {
	// A lapsed ACTIVE row the sweeper has not demoted yet still matches the
	// one-active index even though the entitlement checks ignore it. Demote
	// it here so a paid settlement is never rejected over access that has
	// already ended.
	var lapsed []models.UserPurchase
	err := tx.Where("user_id = ? AND item_type = ? AND item_id = ? AND status = ? AND expires_at <= ?",
		order.UserID, order.ItemType, order.ItemID, models.PurchaseStatusActive, time.Now()).
		Find(&lapsed).Error
	if err != nil {
		return nil, fmt.Errorf("lapsed entitlement lookup failed: %w", err)
	}
	for i := range lapsed {
		if err := ExpirePurchase(tx, &lapsed[i]); err != nil {
			return nil, err
		}
	}

	purchase := models.UserPurchase{
		UserID:      order.UserID,
		ItemType:    order.ItemType,
		ItemID:      order.ItemID,
		OrderID:     order.ID,
		PaymentID:   payment.ID,
		PurchasedAt: time.Now(),
		ExpiresAt:   order.ValidUntil,
		Status:      models.PurchaseStatusActive,
	}
	purchase.History = purchase.History.Append(models.PurchaseStatusActive, "purchase activated")

	if err := tx.Create(&purchase).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyActive
		}
		return nil, fmt.Errorf("purchase insert failed: %w", err)
	}
	return &purchase, nil
}

// ExpirePurchase transitions an ACTIVE purchase to EXPIRED. The UPDATE is
// conditioned on the current status so re-running on an already expired
// record is a no-op.
func ExpirePurchase(db *gorm.DB, purchase *models.UserPurchase) error {
	history := purchase.History.Append(models.PurchaseStatusExpired, "validity window passed")
	res := db.Model(&models.UserPurchase{}).
		Where("id = ? AND status = ?", purchase.ID, models.PurchaseStatusActive).
		Updates(map[string]interface{}{
			"status":  models.PurchaseStatusExpired,
			"history": history,
		})
	if res.Error != nil {
		return fmt.Errorf("purchase expire failed: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		purchase.Status = models.PurchaseStatusExpired
		purchase.History = history
	}
	return nil
}

// isUniqueViolation detects a postgres unique constraint error (SQLSTATE
// 23505) without depending on the driver's error type.
func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key"))
}
