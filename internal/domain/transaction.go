package domain

import "time"

// Transaction types
const (
	TxBuy      = "BUY"
	TxSell     = "SELL"
	TxDeposit  = "DEPOSIT"
	TxWithdraw = "WITHDRAW"
)

// Transaction Model: append-only record of one financial operation.
// Rows are never updated or deleted; history is ordered by ID.
type Transaction struct {
	ID            uint      `gorm:"primaryKey"`     // Primary key, also the display order
	UserID        uint      `gorm:"index;not null"` // Foreign key to User
	Symbol        *string   // Ticker symbol, nil for cash-only operations
	Type          string    `gorm:"not null"` // Transaction type: BUY, SELL, DEPOSIT, WITHDRAW
	Shares        int       `gorm:"not null"` // Share count, 0 for cash-only operations
	PricePerShare float64   `gorm:"not null"` // Executed share price, or the cash amount for DEPOSIT/WITHDRAW
	CreatedAt     time.Time // Timestamp of creation
}
