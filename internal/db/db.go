package db

import (
	"trading_sim/internal/config" // Application configuration
	"trading_sim/internal/domain" // Domain models

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// DSN builds the MySQL data source name from configuration
func DSN(cfg *config.Config) string {
	return cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
}

// Open connects to the database. TranslateError maps driver-specific
// unique-constraint violations to gorm.ErrDuplicatedKey, which
// registration relies on to detect duplicate usernames.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

// Migrate creates or updates the schema for all domain models.
// AutoMigrate also installs the unique constraints the ledger relies on:
// users.username and the (user_id, symbol) holding index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Holding{},
		&domain.Stock{},
		&domain.Transaction{},
	)
}
