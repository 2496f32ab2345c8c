package api

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"trading_sim/internal/config"
	"trading_sim/internal/domain"
	"trading_sim/internal/ledger"
	"trading_sim/internal/portfolio"
	"trading_sim/internal/quote"

	"github.com/gin-gonic/gin"
)

// fakeLedger returns a configured error per operation and records the
// last call it received.
type fakeLedger struct {
	buyErr, sellErr, depositErr, withdrawErr error

	calls  int
	symbol string
	shares int
	amount float64
}

func (f *fakeLedger) Buy(_ context.Context, _ uint, symbol string, shares int) error {
	f.calls++
	f.symbol, f.shares = symbol, shares
	return f.buyErr
}

func (f *fakeLedger) Sell(_ context.Context, _ uint, symbol string, shares int) error {
	f.calls++
	f.symbol, f.shares = symbol, shares
	return f.sellErr
}

func (f *fakeLedger) Deposit(_ context.Context, _ uint, amount float64) error {
	f.calls++
	f.amount = amount
	return f.depositErr
}

func (f *fakeLedger) Withdraw(_ context.Context, _ uint, amount float64, _ string) error {
	f.calls++
	f.amount = amount
	return f.withdrawErr
}

type fakeViewer struct {
	summary portfolio.Summary
	history portfolio.HistoryPage
	symbols []string

	histPage, histSize int
}

func (f *fakeViewer) Portfolio(context.Context, uint) (portfolio.Summary, error) {
	return f.summary, nil
}

func (f *fakeViewer) History(_ context.Context, _ uint, page, pageSize int) (portfolio.HistoryPage, error) {
	f.histPage, f.histSize = page, pageSize
	return f.history, nil
}

func (f *fakeViewer) Symbols(context.Context, uint) ([]string, error) {
	return f.symbols, nil
}

type fakeQuoter struct {
	q   quote.Quote
	err error
}

func (f *fakeQuoter) Lookup(context.Context, string) (quote.Quote, error) {
	return f.q, f.err
}

// newTestRouter mounts handlers behind a stub session that always
// authenticates user 1, with a minimal template set.
func newTestRouter(register func(r *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	tmpl := template.Must(template.New("apology.html").Parse(`{{ .Code }}: {{ .Message }}`))
	template.Must(tmpl.New("index.html").Parse(`{{ .Flash }} balance={{ .Balance }} total={{ .TotalValue }}`))
	template.Must(tmpl.New("history.html").Parse(`{{ range .Transactions }}{{ .Symbol }}:{{ .Type }} {{ end }}`))
	template.Must(tmpl.New("quoted.html").Parse(`{{ .Name }} ({{ .Symbol }}) {{ .PricePerShare }}`))
	template.Must(tmpl.New("sell.html").Parse(`{{ range .Symbols }}{{ . }} {{ end }}`))
	r.SetHTMLTemplate(tmpl)

	authed := r.Group("/")
	authed.Use(func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Next()
	})
	register(authed)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuyHandlerRejectsBadShares(t *testing.T) {
	l := &fakeLedger{}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/buy", BuyHandler(l)) })

	for _, shares := range []string{"", "abc", "0", "-2", "1.5"} {
		w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {shares}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("shares=%q: status = %d, want 400", shares, w.Code)
		}
	}
	if l.calls != 0 {
		t.Errorf("ledger called %d times for invalid input", l.calls)
	}
}

func TestBuyHandlerSuccessRedirects(t *testing.T) {
	l := &fakeLedger{}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/buy", BuyHandler(l)) })

	w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {"10"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/?flash=Bought%21" {
		t.Errorf("redirect = %q", loc)
	}
	if l.symbol != "NFLX" || l.shares != 10 {
		t.Errorf("ledger got %q/%d", l.symbol, l.shares)
	}
}

func TestBuyHandlerInsufficientFunds(t *testing.T) {
	l := &fakeLedger{buyErr: ledger.ErrInsufficientFunds}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/buy", BuyHandler(l)) })

	w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {"10"}})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestSellHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"no holding", ledger.ErrNoSuchHolding, http.StatusNotFound},
		{"unknown symbol", ledger.ErrUnknownSymbol, http.StatusNotFound},
		{"too many shares", &ledger.InsufficientSharesError{Symbol: "NFLX", Held: 4}, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := &fakeLedger{sellErr: c.err}
			r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/sell", SellHandler(l)) })

			w := postForm(r, "/sell", url.Values{"symbol": {"NFLX"}, "shares": {"10"}})
			if w.Code != c.want {
				t.Errorf("status = %d, want %d", w.Code, c.want)
			}
		})
	}
}

func TestSellHandlerReportsHeldShares(t *testing.T) {
	l := &fakeLedger{sellErr: &ledger.InsufficientSharesError{Symbol: "NFLX", Held: 4}}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/sell", SellHandler(l)) })

	w := postForm(r, "/sell", url.Values{"symbol": {"NFLX"}, "shares": {"10"}})
	if !strings.Contains(w.Body.String(), "You only have 4 NFLX shares") {
		t.Errorf("body %q missing held-share count", w.Body.String())
	}
}

func TestDepositHandlerBelowMinimum(t *testing.T) {
	l := &fakeLedger{depositErr: ledger.ErrBelowMinimum}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/deposit", DepositHandler(l, 100)) })

	w := postForm(r, "/deposit", url.Values{"amount": {"50.00"}})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "$100.00") {
		t.Errorf("body %q missing minimum amount", w.Body.String())
	}
}

func TestDepositHandlerRejectsBadAmount(t *testing.T) {
	l := &fakeLedger{}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/deposit", DepositHandler(l, 100)) })

	for _, amount := range []string{"", "abc", "-50", "0"} {
		w := postForm(r, "/deposit", url.Values{"amount": {amount}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("amount=%q: status = %d, want 400", amount, w.Code)
		}
	}
	if l.calls != 0 {
		t.Errorf("ledger called %d times for invalid input", l.calls)
	}
}

func TestWithdrawHandlerConfirmationMismatch(t *testing.T) {
	l := &fakeLedger{}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/withdraw", WithdrawHandler(l, 100)) })

	w := postForm(r, "/withdraw", url.Values{
		"amount":       {"200.00"},
		"password":     {"secret1"},
		"confirmation": {"secret2"},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if l.calls != 0 {
		t.Error("ledger called despite confirmation mismatch")
	}
}

func TestWithdrawHandlerWrongPassword(t *testing.T) {
	l := &fakeLedger{withdrawErr: ledger.ErrAuthenticationFailed}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/withdraw", WithdrawHandler(l, 100)) })

	w := postForm(r, "/withdraw", url.Values{
		"amount":       {"200.00"},
		"password":     {"wrong"},
		"confirmation": {"wrong"},
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestQuoteHandler(t *testing.T) {
	q := &fakeQuoter{q: quote.Quote{Symbol: "NFLX", Name: "Netflix, Inc.", Price: 150.25}}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/quote", QuoteHandler(q)) })

	w := postForm(r, "/quote", url.Values{"symbol": {"nflx"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "$150.25") {
		t.Errorf("body %q missing formatted price", w.Body.String())
	}
}

func TestQuoteHandlerNotFound(t *testing.T) {
	q := &fakeQuoter{err: quote.ErrNotFound}
	r := newTestRouter(func(g *gin.RouterGroup) { g.POST("/quote", QuoteHandler(q)) })

	w := postForm(r, "/quote", url.Values{"symbol": {"nope"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid symbol - (NOPE)") {
		t.Errorf("body %q missing symbol echo", w.Body.String())
	}
}

func TestIndexHandlerRendersSummary(t *testing.T) {
	v := &fakeViewer{summary: portfolio.Summary{Balance: 8500.00, TotalValue: 10100.00}}
	r := newTestRouter(func(g *gin.RouterGroup) { g.GET("/", IndexHandler(v)) })

	req := httptest.NewRequest(http.MethodGet, "/?flash=Bought%21", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Bought!", "$8,500.00", "$10,100.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

func TestHistoryHandlerDefaultsToUnbounded(t *testing.T) {
	symbol := "NFLX"
	v := &fakeViewer{history: portfolio.HistoryPage{
		Transactions: []domain.Transaction{
			{Symbol: &symbol, Type: domain.TxBuy, Shares: 10, PricePerShare: 150.00},
			{Type: domain.TxDeposit, Shares: 0, PricePerShare: 500.00},
		},
		Page:       1,
		TotalPages: 1,
	}}
	r := newTestRouter(func(g *gin.RouterGroup) { g.GET("/history", HistoryHandler(v)) })

	// No query params: the whole history is requested, no limit
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if v.histSize != 0 {
		t.Errorf("page size = %d, want 0 (no limit)", v.histSize)
	}

	// Cash-only rows render N/A in the symbol column
	body := w.Body.String()
	if !strings.Contains(body, "N/A:DEPOSIT") {
		t.Errorf("body %q missing N/A symbol for cash-only row", body)
	}
	if !strings.Contains(body, "NFLX:BUY") {
		t.Errorf("body %q missing buy row", body)
	}

	// Explicit query params are forwarded
	req = httptest.NewRequest(http.MethodGet, "/history?page=2&page_size=10", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if v.histPage != 2 || v.histSize != 10 {
		t.Errorf("page/size = %d/%d, want 2/10", v.histPage, v.histSize)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl := template.Must(template.New("apology.html").Parse(`{{ .Code }}: {{ .Message }}`))
	r.SetHTMLTemplate(tmpl)
	// nil DB is safe: validation rejects these before any query
	r.POST("/register", RegisterHandler(nil, &config.Config{SessionSecret: "s", StartingCash: 10000}))

	cases := []url.Values{
		{"username": {""}, "password": {"pw"}, "confirmation": {"pw"}},
		{"username": {"alice"}, "password": {""}, "confirmation": {""}},
		{"username": {"alice"}, "password": {"pw1"}, "confirmation": {"pw2"}},
	}
	for i, form := range cases {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, w.Code)
		}
	}
}
