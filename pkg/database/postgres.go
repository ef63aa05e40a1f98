package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Eursukkul/dojo-booking/internal/models"
)

// NewPostgresDB opens the submission journal and migrates its schema.
func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Submission{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	// One journal row per dispatch attempt of a session.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_submission_attempt
		ON submissions (session_id, attempt)
	`).Error; err != nil {
		return nil, fmt.Errorf("create submission index: %w", err)
	}

	return db, nil
}
