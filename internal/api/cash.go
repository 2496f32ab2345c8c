package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"strconv"  // Form value parsing

	"trading_sim/internal/ledger" // Ledger error taxonomy
	"trading_sim/internal/utils"  // USD formatting

	"github.com/gin-gonic/gin" // Gin web framework
)

// DepositPageHandler serves the deposit form
func DepositPageHandler(minAmount float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "deposit.html", gin.H{"Minimum": utils.USD(minAmount)})
	}
}

// DepositHandler adds cash to the authenticated user's balance
func DepositHandler(l Ledger, minAmount float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		amountField := c.PostForm("amount")
		if amountField == "" {
			apology(c, http.StatusBadRequest, "must provide amount of cash")
			return
		}
		amount, err := strconv.ParseFloat(amountField, 64)
		if err != nil || amount <= 0 {
			apology(c, http.StatusBadRequest, "deposit amount must be a positive number")
			return
		}

		switch err := l.Deposit(c.Request.Context(), userID, amount); {
		case err == nil:
			redirectHome(c, "Success: Deposit!")
		case errors.Is(err, ledger.ErrInvalidInput):
			apology(c, http.StatusBadRequest, "deposit amount must be a positive number")
		case errors.Is(err, ledger.ErrBelowMinimum):
			apology(c, http.StatusForbidden, "minimum deposit amount is "+utils.USD(minAmount))
		default:
			serverError(c, err)
		}
	}
}

// WithdrawPageHandler serves the withdrawal form
func WithdrawPageHandler(minAmount float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "withdraw.html", gin.H{"Minimum": utils.USD(minAmount)})
	}
}

// WithdrawHandler removes cash from the authenticated user's balance
// after re-verifying the password.
func WithdrawHandler(l Ledger, minAmount float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		amountField := c.PostForm("amount")
		if amountField == "" {
			apology(c, http.StatusBadRequest, "must provide amount of cash")
			return
		}
		password := c.PostForm("password")
		if password == "" {
			apology(c, http.StatusBadRequest, "must provide password")
			return
		}
		confirmation := c.PostForm("confirmation")
		if confirmation == "" {
			apology(c, http.StatusBadRequest, "must confirm password")
			return
		}
		if password != confirmation {
			apology(c, http.StatusBadRequest, "passwords do not match")
			return
		}
		amount, err := strconv.ParseFloat(amountField, 64)
		if err != nil || amount <= 0 {
			apology(c, http.StatusBadRequest, "withdrawal amount must be a positive number")
			return
		}

		switch err := l.Withdraw(c.Request.Context(), userID, amount, password); {
		case err == nil:
			redirectHome(c, "Success: Withdrawal!")
		case errors.Is(err, ledger.ErrInvalidInput):
			apology(c, http.StatusBadRequest, "withdrawal amount must be a positive number")
		case errors.Is(err, ledger.ErrAuthenticationFailed):
			apology(c, http.StatusForbidden, "invalid password")
		case errors.Is(err, ledger.ErrBelowMinimum):
			apology(c, http.StatusForbidden, "minimum withdrawal amount is "+utils.USD(minAmount))
		case errors.Is(err, ledger.ErrInsufficientFunds):
			apology(c, http.StatusForbidden, "withdrawal amount exceeds available balance")
		default:
			serverError(c, err)
		}
	}
}
