package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"trading_sim/internal/utils" // USD formatting

	"github.com/gin-gonic/gin" // Gin web framework
)

// holdingRow is one display row of the portfolio table
type holdingRow struct {
	Symbol        string
	Shares        int
	PricePerShare string
	Total         string
}

// IndexHandler renders the authenticated user's portfolio valuation
func IndexHandler(views Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := views.Portfolio(c.Request.Context(), currentUserID(c))
		if err != nil {
			serverError(c, err)
			return
		}

		rows := make([]holdingRow, 0, len(summary.Holdings))
		for _, h := range summary.Holdings {
			rows = append(rows, holdingRow{
				Symbol:        h.Symbol,
				Shares:        h.Shares,
				PricePerShare: utils.USD(h.Price),
				Total:         utils.USD(h.Total),
			})
		}

		c.HTML(http.StatusOK, "index.html", gin.H{
			"Flash":      c.Query("flash"),
			"Portfolio":  rows,
			"Balance":    utils.USD(summary.Balance),
			"TotalValue": utils.USD(summary.TotalValue),
		})
	}
}

// historyRow is one display row of the transaction history table
type historyRow struct {
	Symbol        string
	Type          string
	Shares        int
	PricePerShare string
	Timestamp     string
}

// HistoryHandler renders the user's transaction history, newest first
func HistoryHandler(views Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		pageSize, _ := strconv.Atoi(c.Query("page_size"))

		history, err := views.History(c.Request.Context(), currentUserID(c), page, pageSize)
		if err != nil {
			serverError(c, err)
			return
		}

		rows := make([]historyRow, 0, len(history.Transactions))
		for _, t := range history.Transactions {
			row := historyRow{
				Type:          t.Type,
				Shares:        t.Shares,
				PricePerShare: utils.USD(t.PricePerShare),
				Timestamp:     t.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			// Cash-only operations have no symbol
			if t.Symbol != nil {
				row.Symbol = *t.Symbol
			} else {
				row.Symbol = "N/A"
			}
			rows = append(rows, row)
		}

		c.HTML(http.StatusOK, "history.html", gin.H{
			"Transactions": rows,
			"Page":         history.Page,
			"TotalPages":   history.TotalPages,
		})
	}
}
