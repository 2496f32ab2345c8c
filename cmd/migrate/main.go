package main

import (
	"trading_sim/internal/config" // Application configuration
	"trading_sim/internal/db"     // Database access

	"github.com/sirupsen/logrus" // Logging library
)

// Standalone schema migration, for deployments that separate migration
// from serving.
func main() {
	cfg := config.LoadConfig()

	gormDB, err := db.Open(db.DSN(cfg))
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}
