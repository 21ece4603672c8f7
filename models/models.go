package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a regular user in the system
type User struct {
	gorm.Model
	Username  string `gorm:"uniqueIndex;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	IsBlocked bool   `json:"is_blocked"`
	IsAdmin   bool   `json:"is_admin" gorm:"default:false"`
}

// Admin represents an administrator in the system
type Admin struct {
	gorm.Model
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	LastLogin time.Time `json:"last_login"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
}

// ExamPlan is a purchasable bundle of exam content. Catalog management lives
// in the admin service; this service only reads price and validity.
type ExamPlan struct {
	gorm.Model
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ValidityDays int     `json:"validity_days"`
	Active       bool    `json:"active" gorm:"default:true"`
}

// TestSeries is a purchasable set of mock tests. A paid test series belongs
// to a parent exam plan; owning the plan also grants access to the series.
type TestSeries struct {
	gorm.Model
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	ValidityDays int      `json:"validity_days"`
	IsFree       bool     `json:"is_free" gorm:"default:false"`
	ExamPlanID   uint     `gorm:"index" json:"exam_plan_id"`
	ExamPlan     ExamPlan `json:"-" gorm:"foreignKey:ExamPlanID"`
	Active       bool     `json:"active" gorm:"default:true"`
}
