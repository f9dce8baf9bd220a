package database

import (
	"fmt"
	"time"

	"agrocommunity_backend/internal/config"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

// Connect opens the postgres pool named by the database section. Unique
// violations are translated to gorm.ErrDuplicatedKey for the repositories.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         NewLogger(slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	start := time.Now()
	err := repositories.AutoMigrate(db)
	logger.DBLog("MIGRATE", "all", time.Since(start), err)
	return err
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Error("Failed to close database", "error", err)
	}
}
