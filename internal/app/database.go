package app

import (
	"agrocommunity_backend/database"
	"agrocommunity_backend/internal/config"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/repositories"
)

// openRepositories picks the store named by database.driver. The returned
// func releases the connection pool.
func openRepositories(cfg *config.Config) (*repositories.Repositories, func(), error) {
	if cfg.Database.Driver != "postgres" {
		logger.Warn("Using in-memory store, data is lost on restart")
		return repositories.NewMemoryRepositories(), func() {}, nil
	}

	logger.Info("Connecting to database...")
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, nil, err
	}
	logger.Info("Database connected")

	return repositories.NewGormRepositories(db), func() { database.Close(db) }, nil
}
