package config

import (
	"fmt"

	"github.com/examsutra/ExamSutra/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection and runs migrations.
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	err = DB.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.ExamPlan{},
		&models.TestSeries{},
		&models.Order{},
		&models.Payment{},
		&models.UserPurchase{},
		&models.Coupon{},
		&models.CouponUsage{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	// AutoMigrate cannot express a partial unique index, so it is managed
	// here directly. This is what stops two concurrent settlements from each
	// activating an entitlement for the same (user, item) pair.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_user_purchases_one_active
		ON user_purchases (user_id, item_type, item_id)
		WHERE status = 'ACTIVE' AND deleted_at IS NULL
	`).Error
	if err != nil {
		panic(fmt.Sprintf("Failed to create active purchase index: %v", err))
	}
}
