package main

import (
	"agrocommunity_backend/database"
	"agrocommunity_backend/internal/config"
	"agrocommunity_backend/internal/logger"
)

// Applies the schema without starting the server.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.Server.Env)

	if cfg.Database.Driver != "postgres" {
		logger.Fatal("Migrations need database.driver=postgres", "driver", cfg.Database.Driver)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect", "error", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}
	logger.Info("Migration complete")
}
