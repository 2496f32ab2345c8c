package ledger

import (
	"errors"
	"fmt"
)

// Expected user-facing outcomes of ledger operations. These are not
// system failures and are never retried; the API layer maps each to an
// HTTP status and renders it.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrUnknownSymbol        = errors.New("unknown symbol")
	ErrNoSuchHolding        = errors.New("no such holding")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBelowMinimum         = errors.New("amount below minimum")
)

// InsufficientSharesError reports a sell of more shares than held.
// The message carries the actual held amount.
type InsufficientSharesError struct {
	Symbol string // Ticker symbol
	Held   int    // Shares actually held
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("You only have %d %s shares", e.Held, e.Symbol)
}
