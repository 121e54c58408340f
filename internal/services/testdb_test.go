package services

import (
	"testing"
	"time"

	"github.com/surveydesk/backend/internal/config"
	"github.com/surveydesk/backend/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// steppingClock returns a clock that advances by one second on every call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}
