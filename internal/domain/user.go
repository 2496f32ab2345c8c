package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey"`      // Primary key
	Username  string    `gorm:"unique;not null"` // Unique username
	Hash      string    `gorm:"not null"`        // Hashed password
	Cash      float64   `gorm:"not null"`        // Cash balance, mutated only by ledger operations
	CreatedAt time.Time // Timestamp of registration
}
