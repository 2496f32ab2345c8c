package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"strconv"  // Form value parsing
	"strings"  // Form value trimming

	"trading_sim/internal/ledger" // Ledger error taxonomy
	"trading_sim/internal/utils"  // USD formatting

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// QuotePageHandler serves the quote form
func QuotePageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "quote.html", nil)
	}
}

// QuoteHandler looks up a symbol and renders its current price
func QuoteHandler(quotes Quoter) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := strings.TrimSpace(c.PostForm("symbol"))
		if symbol == "" {
			apology(c, http.StatusBadRequest, "missing symbol")
			return
		}

		q, err := quotes.Lookup(c.Request.Context(), symbol)
		if err != nil {
			apology(c, http.StatusBadRequest, "invalid symbol - ("+strings.ToUpper(symbol)+")")
			return
		}

		c.HTML(http.StatusOK, "quoted.html", gin.H{
			"Name":          q.Name,
			"Symbol":        q.Symbol,
			"PricePerShare": utils.USD(q.Price),
		})
	}
}

// BuyPageHandler serves the buy form
func BuyPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "buy.html", nil)
	}
}

// BuyHandler purchases shares for the authenticated user
func BuyHandler(l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		symbol := strings.TrimSpace(c.PostForm("symbol"))
		if symbol == "" {
			apology(c, http.StatusBadRequest, "missing symbol")
			return
		}
		sharesField := c.PostForm("shares")
		if sharesField == "" {
			apology(c, http.StatusBadRequest, "missing shares")
			return
		}
		shares, err := strconv.Atoi(sharesField)
		if err != nil || shares < 1 {
			apology(c, http.StatusBadRequest, "shares must be a positive integer")
			return
		}

		switch err := l.Buy(c.Request.Context(), userID, symbol, shares); {
		case err == nil:
			redirectHome(c, "Bought!")
		case errors.Is(err, ledger.ErrInvalidInput):
			apology(c, http.StatusBadRequest, "shares must be a positive integer")
		case errors.Is(err, ledger.ErrUnknownSymbol):
			apology(c, http.StatusBadRequest, "invalid symbol")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			apology(c, http.StatusForbidden, "not enough cash")
		default:
			serverError(c, err)
		}
	}
}

// SellPageHandler serves the sell form listing the user's held symbols
func SellPageHandler(views Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		symbols, err := views.Symbols(c.Request.Context(), currentUserID(c))
		if err != nil {
			serverError(c, err)
			return
		}
		c.HTML(http.StatusOK, "sell.html", gin.H{"Symbols": symbols})
	}
}

// SellHandler liquidates shares for the authenticated user
func SellHandler(l Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		symbol := strings.TrimSpace(c.PostForm("symbol"))
		if symbol == "" {
			apology(c, http.StatusBadRequest, "must provide symbol")
			return
		}
		sharesField := c.PostForm("shares")
		if sharesField == "" {
			apology(c, http.StatusBadRequest, "must provide shares")
			return
		}
		shares, err := strconv.Atoi(sharesField)
		if err != nil || shares < 1 {
			apology(c, http.StatusBadRequest, "must provide positive integer")
			return
		}

		var shareErr *ledger.InsufficientSharesError
		switch err := l.Sell(c.Request.Context(), userID, symbol, shares); {
		case err == nil:
			redirectHome(c, "Sold!")
		case errors.Is(err, ledger.ErrInvalidInput):
			apology(c, http.StatusBadRequest, "must provide positive integer")
		case errors.Is(err, ledger.ErrNoSuchHolding):
			apology(c, http.StatusNotFound, "You do not own this stock")
		case errors.Is(err, ledger.ErrUnknownSymbol):
			apology(c, http.StatusNotFound, "invalid symbol")
		case errors.As(err, &shareErr):
			apology(c, http.StatusBadRequest, shareErr.Error())
		default:
			serverError(c, err)
		}
	}
}

// serverError logs an unexpected failure and renders a generic apology
func serverError(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error("Request failed")
	apology(c, http.StatusInternalServerError, "something went wrong")
}
