package controllers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/examsutra/ExamSutra/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// useMockDB swaps config.DB for a gorm connection over sqlmock for the
// duration of one test. Expectations use regexp matching.
func useMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}

	previous := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = previous
		sqlDB.Close()
	})
	return mock
}
