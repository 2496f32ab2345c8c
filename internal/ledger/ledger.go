package ledger

import (
	"context" // Request-scoped cancellation
	"errors"  // Error matching
	"strconv" // Cache key building
	"strings" // Symbol normalization

	"trading_sim/internal/domain" // Domain models
	"trading_sim/internal/quote"  // Quote provider
	"trading_sim/internal/utils"  // Rounding and cache helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password re-verification on withdrawal
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Row locking and upsert clauses
)

// QuoteService is the price lookup the ledger depends on
type QuoteService interface {
	Lookup(ctx context.Context, symbol string) (quote.Quote, error)
}

// Ledger applies financial operations atomically to a user's cash
// balance, per-symbol holdings, and the append-only transaction log.
// Every operation runs inside one database transaction holding a row
// lock on the user, so concurrent operations per user serialize.
type Ledger struct {
	db        *gorm.DB
	quotes    QuoteService
	rdb       *redis.Client // nil disables history-cache invalidation
	minAmount float64       // Minimum deposit/withdrawal amount
}

// New builds a Ledger
func New(db *gorm.DB, quotes QuoteService, rdb *redis.Client, minAmount float64) *Ledger {
	return &Ledger{db: db, quotes: quotes, rdb: rdb, minAmount: minAmount}
}

// lockUser re-reads the user row under a FOR UPDATE lock inside tx
func lockUser(tx *gorm.DB, userID uint) (*domain.User, error) {
	var user domain.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Buy purchases shares of a symbol at the current quoted price.
func (l *Ledger) Buy(ctx context.Context, userID uint, symbol string, shares int) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || shares < 1 {
		return ErrInvalidInput
	}

	q, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		return ErrUnknownSymbol
	}

	price := utils.Round2(q.Price)
	cost := utils.Round2(float64(shares) * price)

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		balance := utils.Round2(user.Cash)
		if balance < cost {
			return ErrInsufficientFunds
		}

		// Deduct cost from cash
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).
			Update("cash", utils.Round2(balance-cost)).Error; err != nil {
			return err
		}

		// Add shares to the holding, creating it on first buy
		var holding domain.Holding
		err = tx.Where("user_id = ? AND symbol = ?", userID, q.Symbol).First(&holding).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = domain.Holding{UserID: userID, Symbol: q.Symbol, Shares: shares}
			if err := tx.Create(&holding).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&holding).
				Update("shares", gorm.Expr("shares + ?", shares)).Error; err != nil {
				return err
			}
		}

		// Remember the symbol's display name, insert-or-ignore
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.Stock{Symbol: q.Symbol, CompanyName: q.Name}).Error; err != nil {
			return err
		}

		return recordTransaction(tx, userID, &q.Symbol, domain.TxBuy, shares, price)
	})
	if err != nil {
		return logFailure(err, logrus.Fields{
			"user_id": userID, "symbol": q.Symbol, "shares": shares, "price": price, "type": domain.TxBuy,
		})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID, "symbol": q.Symbol, "shares": shares, "price": price, "cost": cost, "type": domain.TxBuy,
	}).Info("Buy executed")
	l.invalidateHistory(ctx, userID)
	return nil
}

// Sell liquidates shares of a holding at the current quoted price.
// The holding row is deleted when its share count reaches zero.
func (l *Ledger) Sell(ctx context.Context, userID uint, symbol string, shares int) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || shares < 1 {
		return ErrInvalidInput
	}
	symbol = strings.ToUpper(symbol)

	// Reject before pricing when the user holds nothing of this symbol
	var held domain.Holding
	err := l.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&held).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoSuchHolding
	} else if err != nil {
		return err
	}

	q, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		return ErrUnknownSymbol
	}

	price := utils.Round2(q.Price)

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		// Re-read the holding under the user lock
		var holding domain.Holding
		err = tx.Where("user_id = ? AND symbol = ?", userID, symbol).First(&holding).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoSuchHolding
		} else if err != nil {
			return err
		}
		if shares > holding.Shares {
			return &InsufficientSharesError{Symbol: symbol, Held: holding.Shares}
		}

		proceeds := utils.Round2(float64(shares) * price)
		balance := utils.Round2(user.Cash)
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).
			Update("cash", utils.Round2(balance+proceeds)).Error; err != nil {
			return err
		}

		remaining := holding.Shares - shares
		if remaining == 0 {
			if err := tx.Delete(&holding).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&holding).Update("shares", remaining).Error; err != nil {
				return err
			}
		}

		return recordTransaction(tx, userID, &symbol, domain.TxSell, shares, price)
	})
	if err != nil {
		return logFailure(err, logrus.Fields{
			"user_id": userID, "symbol": symbol, "shares": shares, "price": price, "type": domain.TxSell,
		})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID, "symbol": symbol, "shares": shares, "price": price, "type": domain.TxSell,
	}).Info("Sell executed")
	l.invalidateHistory(ctx, userID)
	return nil
}

// Deposit adds cash to the user's balance.
func (l *Ledger) Deposit(ctx context.Context, userID uint, amount float64) error {
	if amount <= 0 {
		return ErrInvalidInput
	}
	amount = utils.Round2(amount)
	if amount < l.minAmount {
		return ErrBelowMinimum
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).
			Update("cash", utils.Round2(utils.Round2(user.Cash)+amount)).Error; err != nil {
			return err
		}
		return recordTransaction(tx, userID, nil, domain.TxDeposit, 0, amount)
	})
	if err != nil {
		return logFailure(err, logrus.Fields{"user_id": userID, "amount": amount, "type": domain.TxDeposit})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID, "amount": amount, "type": domain.TxDeposit,
	}).Info("Deposit executed")
	l.invalidateHistory(ctx, userID)
	return nil
}

// Withdraw removes cash from the user's balance. The user's password is
// re-verified against the stored hash even though the caller already
// holds a session.
func (l *Ledger) Withdraw(ctx context.Context, userID uint, amount float64, password string) error {
	if amount <= 0 || password == "" {
		return ErrInvalidInput
	}
	amount = utils.Round2(amount)

	var user domain.User
	if err := l.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return ErrAuthenticationFailed
	}

	if amount < l.minAmount {
		return ErrBelowMinimum
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		balance := utils.Round2(locked.Cash)
		if balance < amount {
			return ErrInsufficientFunds
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).
			Update("cash", utils.Round2(balance-amount)).Error; err != nil {
			return err
		}
		return recordTransaction(tx, userID, nil, domain.TxWithdraw, 0, amount)
	})
	if err != nil {
		return logFailure(err, logrus.Fields{"user_id": userID, "amount": amount, "type": domain.TxWithdraw})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID, "amount": amount, "type": domain.TxWithdraw,
	}).Info("Withdrawal executed")
	l.invalidateHistory(ctx, userID)
	return nil
}

// recordTransaction appends one immutable row to the transaction log
// inside the caller's database transaction.
func recordTransaction(tx *gorm.DB, userID uint, symbol *string, txType string, shares int, pricePerShare float64) error {
	t := domain.Transaction{
		UserID:        userID,
		Symbol:        symbol,
		Type:          txType,
		Shares:        shares,
		PricePerShare: pricePerShare,
	}
	return tx.Create(&t).Error
}

// invalidateHistory drops the user's cached history pages after a
// mutation, best effort (first pages of the default size).
func (l *Ledger) invalidateHistory(ctx context.Context, userID uint) {
	if l.rdb == nil {
		return
	}
	prefix := "txhistory:user:" + strconv.Itoa(int(userID))
	for i := 1; i <= 5; i++ {
		_ = utils.DeleteCache(ctx, l.rdb, prefix+":page:"+strconv.Itoa(i)+":size:20")
	}
}

// logFailure logs unexpected persistence errors; expected user-facing
// outcomes pass through untouched.
func logFailure(err error, fields logrus.Fields) error {
	var shareErr *InsufficientSharesError
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrUnknownSymbol),
		errors.Is(err, ErrNoSuchHolding),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrBelowMinimum),
		errors.As(err, &shareErr):
		return err
	}
	fields["error"] = err.Error()
	logrus.WithFields(fields).Error("Ledger operation failed")
	return err
}
