package domain

// Holding Model: one user's current share count in one ticker symbol.
// A row only exists while shares > 0; full liquidation deletes it.
type Holding struct {
	ID     uint   `gorm:"primaryKey"`                          // Primary key
	UserID uint   `gorm:"not null;uniqueIndex:idx_user_symbol"` // Foreign key to User
	Symbol string `gorm:"not null;uniqueIndex:idx_user_symbol"` // Ticker symbol, uppercase
	Shares int    `gorm:"not null"`                             // Share count, always positive
}
