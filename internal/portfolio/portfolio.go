package portfolio

import (
	"context" // Request-scoped cancellation
	"strconv" // Cache key building
	"time"    // Cache TTL

	"trading_sim/internal/domain" // Domain models
	"trading_sim/internal/ledger" // Quote service interface
	"trading_sim/internal/utils"  // Rounding and cache helpers

	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// historyCacheTTL is how long one cached history page stays valid.
// Pages are also invalidated eagerly after every ledger mutation.
const historyCacheTTL = 60 * time.Second

// PricedHolding is one holding valued at the current quote
type PricedHolding struct {
	Symbol string  `json:"symbol"` // Ticker symbol
	Shares int     `json:"shares"` // Shares held
	Price  float64 `json:"price"`  // Current price per share
	Total  float64 `json:"total"`  // Shares times price
}

// Summary is the portfolio valuation for one user
type Summary struct {
	Balance    float64         `json:"balance"`     // Cash balance
	Holdings   []PricedHolding `json:"holdings"`    // Successfully priced holdings
	TotalValue float64         `json:"total_value"` // Cash plus holding values
}

// HistoryPage is one page of a user's transaction history, newest first
type HistoryPage struct {
	Transactions []domain.Transaction `json:"transactions"` // Transactions on this page
	Page         int                  `json:"page"`         // Current page
	PageSize     int                  `json:"page_size"`    // Page size
	Total        int64                `json:"total"`        // Total transactions
	TotalPages   int                  `json:"total_pages"`  // Total pages
}

// Service reads portfolios and transaction history
type Service struct {
	db     *gorm.DB
	quotes ledger.QuoteService
	rdb    *redis.Client // nil disables history caching
}

// NewService builds a portfolio Service
func NewService(db *gorm.DB, quotes ledger.QuoteService, rdb *redis.Client) *Service {
	return &Service{db: db, quotes: quotes, rdb: rdb}
}

// Portfolio values every holding at the current quote. Holdings whose
// live lookup fails are silently excluded rather than failing the view.
func (s *Service) Portfolio(ctx context.Context, userID uint) (Summary, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return Summary{}, err
	}

	var holdings []domain.Holding
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("symbol").
		Find(&holdings).Error; err != nil {
		return Summary{}, err
	}

	summary := Summary{Balance: utils.Round2(user.Cash)}
	var holdingsValue float64
	for _, h := range holdings {
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			continue // best-effort degrade, skip unpriced holdings
		}
		price := utils.Round2(q.Price)
		total := utils.Round2(float64(h.Shares) * price)
		holdingsValue += total
		summary.Holdings = append(summary.Holdings, PricedHolding{
			Symbol: h.Symbol,
			Shares: h.Shares,
			Price:  price,
			Total:  total,
		})
	}
	summary.TotalValue = utils.Round2(summary.Balance + holdingsValue)
	return summary, nil
}

// Symbols lists the symbols the user currently holds
func (s *Service) Symbols(ctx context.Context, userID uint) ([]string, error) {
	var symbols []string
	err := s.db.WithContext(ctx).
		Model(&domain.Holding{}).
		Where("user_id = ?", userID).
		Order("symbol").
		Pluck("symbol", &symbols).Error
	return symbols, err
}

// History returns the user's transactions, newest first by insertion
// order. A pageSize of 0 means no limit: the whole history in one
// page, uncached. Positive page sizes are capped at 100 and served
// from Redis when a fresh page is cached.
func (s *Service) History(ctx context.Context, userID uint, page, pageSize int) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 || pageSize > 100 {
		pageSize = 20
	}

	var cacheKey string
	if pageSize > 0 {
		cacheKey = "txhistory:user:" + strconv.Itoa(int(userID)) +
			":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
	}
	if s.rdb != nil && cacheKey != "" {
		var cached HistoryPage
		if found, err := utils.GetCache(ctx, s.rdb, cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return HistoryPage{}, err
	}

	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc")
	if pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	var transactions []domain.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return HistoryPage{}, err
	}

	result := HistoryPage{
		Transactions: transactions,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   1,
	}
	if pageSize > 0 {
		result.TotalPages = (int(total) + pageSize - 1) / pageSize
	} else {
		result.Page = 1
	}
	if s.rdb != nil && cacheKey != "" {
		_ = utils.SetCache(ctx, s.rdb, cacheKey, result, historyCacheTTL)
	}
	return result, nil
}
