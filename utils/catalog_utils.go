package utils

import (
	"errors"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"gorm.io/gorm"
)

// CatalogItem is the read-only view of a purchasable item. The settlement
// flow only ever needs price, validity and the free flag; everything else
// about exam plans and test series is another subsystem's business.
type CatalogItem struct {
	ItemType     string
	ItemID       uint
	Name         string
	Price        float64
	ValidityDays int
	IsFree       bool
	// ParentPlanID is set for test series only; owning the parent exam
	// plan satisfies ownership of the series.
	ParentPlanID uint
}

// ErrItemNotFound is returned when the (type, id) pair resolves to nothing.
var ErrItemNotFound = errors.New("catalog item not found")

// GetCatalogItem resolves an (itemType, itemID) reference against the
// catalog tables. Soft-deleted and inactive items are treated as missing.
func GetCatalogItem(db *gorm.DB, itemType string, itemID uint) (*CatalogItem, error) {
	if db == nil {
		db = config.DB
	}

	switch itemType {
	case models.ItemTypeExamPlan:
		var plan models.ExamPlan
		if err := db.Where("id = ? AND active = ?", itemID, true).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &CatalogItem{
			ItemType:     models.ItemTypeExamPlan,
			ItemID:       plan.ID,
			Name:         plan.Name,
			Price:        plan.Price,
			ValidityDays: plan.ValidityDays,
		}, nil
	case models.ItemTypeTestSeries:
		var series models.TestSeries
		if err := db.Where("id = ? AND active = ?", itemID, true).First(&series).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		return &CatalogItem{
			ItemType:     models.ItemTypeTestSeries,
			ItemID:       series.ID,
			Name:         series.Name,
			Price:        series.Price,
			ValidityDays: series.ValidityDays,
			IsFree:       series.IsFree,
			ParentPlanID: series.ExamPlanID,
		}, nil
	default:
		return nil, ErrItemNotFound
	}
}
