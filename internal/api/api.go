package api

import (
	"context"  // Request-scoped cancellation
	"net/http" // HTTP status codes
	"net/url"  // Flash message escaping

	"trading_sim/internal/portfolio" // Portfolio view types
	"trading_sim/internal/quote"     // Quote types

	"github.com/gin-gonic/gin" // Gin web framework
)

// Ledger applies financial operations for a user
type Ledger interface {
	Buy(ctx context.Context, userID uint, symbol string, shares int) error
	Sell(ctx context.Context, userID uint, symbol string, shares int) error
	Deposit(ctx context.Context, userID uint, amount float64) error
	Withdraw(ctx context.Context, userID uint, amount float64, password string) error
}

// Viewer reads portfolios and transaction history
type Viewer interface {
	Portfolio(ctx context.Context, userID uint) (portfolio.Summary, error)
	History(ctx context.Context, userID uint, page, pageSize int) (portfolio.HistoryPage, error)
	Symbols(ctx context.Context, userID uint) ([]string, error)
}

// Quoter looks up the current price of a symbol
type Quoter interface {
	Lookup(ctx context.Context, symbol string) (quote.Quote, error)
}

// currentUserID returns the authenticated user set by the session middleware
func currentUserID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}

// apology renders an error message to the user with the given status
func apology(c *gin.Context, code int, message string) {
	c.HTML(code, "apology.html", gin.H{
		"Code":    code,
		"Message": message,
	})
}

// redirectHome sends the browser back to the portfolio with a flash message
func redirectHome(c *gin.Context, flash string) {
	target := "/"
	if flash != "" {
		target += "?flash=" + url.QueryEscape(flash)
	}
	c.Redirect(http.StatusSeeOther, target)
}
