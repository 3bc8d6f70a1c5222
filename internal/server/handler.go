package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sheikh-saqib/bank-account-simulator/internal/ledger"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/shopspring/decimal"
)

const defaultLimit = 20

// Handler exposes the ledger over HTTP. Amounts are integer cents; crypto
// amounts are decimal strings.
type Handler struct {
	ledger      *ledger.Ledger
	logger      *slog.Logger
	maxDisputes int
}

func NewHandler(l *ledger.Ledger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ledger: l, logger: logger, maxDisputes: l.Policy().MaxDisputes}
}

// Router returns a chi router with the standard middleware and all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	h.Routes(r)
	return r
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.openCustomer)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCustomer)

			r.Route("/accounts/{account}", func(r chi.Router) {
				r.Post("/deposit", h.deposit)
				r.Post("/withdraw", h.withdraw)
				r.Post("/disputes", h.dispute)
				r.Get("/transactions", h.transactions)
				r.Get("/overdraft-logs", h.overdraftLogs)
			})

			r.Post("/transfers", h.transfer)
			r.Get("/transfers", h.transfers)

			r.Post("/crypto/buy", h.buyCrypto)
			r.Post("/crypto/sell", h.sellCrypto)
			r.Get("/crypto", h.holdings)
			r.Get("/crypto/history", h.cryptoHistory)
		})
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) openCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID    string `json:"customer_id"`
		CheckingCents int64  `json:"checking_cents"`
		SavingsCents  int64  `json:"savings_cents"`
	}
	if !decode(w, r, &req) {
		return
	}

	c, err := h.ledger.OpenCustomer(r.Context(), req.CustomerID, money.Cents(req.CheckingCents), money.Cents(req.SavingsCents))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.customerView(c))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.ledger.Customer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.customerView(c))
}

type amountRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.ledger.Deposit(r.Context(), chi.URLParam(r, "id"), account, money.Cents(req.AmountCents))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.customerView(c))
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.ledger.Withdraw(r.Context(), chi.URLParam(r, "id"), account, money.Cents(req.AmountCents))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.customerView(c))
}

func (h *Handler) dispute(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r)
	if !ok {
		return
	}
	var req struct {
		NumTransactionsAgo int `json:"num_transactions_ago"`
	}
	if !decode(w, r, &req) {
		return
	}

	c, err := h.ledger.Dispute(r.Context(), chi.URLParam(r, "id"), account, req.NumTransactionsAgo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.customerView(c))
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r)
	if !ok {
		return
	}
	n, ok := limitParam(w, r)
	if !ok {
		return
	}

	rows, err := h.ledger.RecentTransactions(r.Context(), chi.URLParam(r, "id"), account, n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionViews(rows))
}

func (h *Handler) overdraftLogs(w http.ResponseWriter, r *http.Request) {
	account, ok := accountParam(w, r)
	if !ok {
		return
	}

	logs, err := h.ledger.OverdraftLogs(r.Context(), chi.URLParam(r, "id"), account)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOverdraftLogViews(logs))
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAccount string `json:"from_account"`
		To          string `json:"to_customer_id"`
		ToAccount   string `json:"to_account"`
		AmountCents int64  `json:"amount_cents"`
	}
	if !decode(w, r, &req) {
		return
	}

	from := chi.URLParam(r, "id")
	to := req.To
	if to == "" {
		to = from
	}
	fromAccount, _ := models.ParseAccountType(req.FromAccount)
	toAccount, _ := models.ParseAccountType(req.ToAccount)

	res, err := h.ledger.Transfer(r.Context(), ledger.TransferRequest{
		From:        from,
		FromAccount: fromAccount,
		To:          to,
		ToAccount:   toAccount,
		Amount:      money.Cents(req.AmountCents),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Transfer  transferView `json:"transfer"`
		Sender    customerView `json:"sender"`
		Recipient customerView `json:"recipient"`
	}{
		Transfer:  newTransferView(res.Log),
		Sender:    h.customerView(res.Sender),
		Recipient: h.customerView(res.Recipient),
	})
}

func (h *Handler) transfers(w http.ResponseWriter, r *http.Request) {
	n, ok := limitParam(w, r)
	if !ok {
		return
	}

	logs, err := h.ledger.TransferLogs(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]transferView, 0, len(logs))
	for _, l := range logs {
		out = append(out, newTransferView(l))
	}
	writeJSON(w, http.StatusOK, out)
}

type tradeRequest struct {
	CryptoName string          `json:"crypto_name"`
	Amount     decimal.Decimal `json:"amount"`
}

func (h *Handler) buyCrypto(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !decode(w, r, &req) {
		return
	}

	receipt, err := h.ledger.BuyCrypto(r.Context(), chi.URLParam(r, "id"), req.CryptoName, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.receiptView(receipt))
}

func (h *Handler) sellCrypto(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !decode(w, r, &req) {
		return
	}

	receipt, err := h.ledger.SellCrypto(r.Context(), chi.URLParam(r, "id"), req.CryptoName, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.receiptView(receipt))
}

func (h *Handler) holdings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.CryptoHoldings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]holdingView, 0, len(rows))
	for _, hd := range rows {
		out = append(out, holdingView{CryptoName: hd.CryptoName, Amount: hd.CryptoAmount})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) cryptoHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.CryptoHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]cryptoHistoryView, 0, len(rows))
	for _, e := range rows {
		out = append(out, cryptoHistoryView{
			ID:           e.ID,
			Timestamp:    e.Timestamp,
			Action:       string(e.Action),
			CryptoName:   e.CryptoName,
			Amount:       e.CryptoAmount,
			PricePerUnit: e.PricePerUnit,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// decode parses the JSON body into v and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

func accountParam(w http.ResponseWriter, r *http.Request) (models.AccountType, bool) {
	account, ok := models.ParseAccountType(chi.URLParam(r, "account"))
	if !ok {
		writeErr(w, ledger.ErrInvalidAccountType)
	}
	return account, ok
}

func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeBadRequest(w, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// fail writes err and logs it unless it is an ordinary business rejection.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !ledger.IsRejection(err) {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeErr(w, err)
}
