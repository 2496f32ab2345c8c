package domain

// Stock Model: catalog of symbols seen so far, populated on first buy.
// Display names only; prices are always re-fetched from the quote service.
type Stock struct {
	ID          uint   `gorm:"primaryKey"`      // Primary key
	Symbol      string `gorm:"unique;not null"` // Ticker symbol, uppercase
	CompanyName string `gorm:"not null"`        // Display name from the quote service
}
