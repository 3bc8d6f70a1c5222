package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sheikh-saqib/bank-account-simulator/internal/ledger"
	"github.com/sheikh-saqib/bank-account-simulator/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPrices map[string]decimal.Decimal

func (p staticPrices) CurrentPrice(ctx context.Context, name string) (decimal.Decimal, error) {
	return p[name], nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.NewLedger(memory.NewMemoryLedgerStore(), ledger.Config{
		Prices: staticPrices{"ETH": decimal.NewFromInt(1000)},
		Logger: logger,
	})
	srv := httptest.NewServer(NewHandler(l, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func decodeInto[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func openCustomer(t *testing.T, srv *httptest.Server, id string, checking, savings int64) {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"customer_id": id, "checking_cents": checking, "savings_cents": savings})
	code, _ := do(t, srv, http.MethodPost, "/customers", string(body))
	require.Equal(t, http.StatusCreated, code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestOpenAndGetCustomer(t *testing.T) {
	srv := newTestServer(t)
	openCustomer(t, srv, "111", 12345, 500)

	code, body := do(t, srv, http.MethodGet, "/customers/111", "")
	require.Equal(t, http.StatusOK, code)
	c := decodeInto[customerView](t, body)
	assert.Equal(t, "111", c.CustomerID)
	assert.Equal(t, int64(12345), c.Checking.BalanceCents)
	assert.Equal(t, int64(500), c.Savings.BalanceCents)
	assert.False(t, c.Frozen)

	code, body = do(t, srv, http.MethodPost, "/customers", `{"customer_id":"111"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "customer_exists", decodeInto[errorBody](t, body).Error)

	code, _ = do(t, srv, http.MethodGet, "/customers/999", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWithdrawIntoOverdraftOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	openCustomer(t, srv, "111", 12345, 0)

	code, body := do(t, srv, http.MethodPost, "/customers/111/accounts/checking/withdraw", `{"amount_cents":15000}`)
	require.Equal(t, http.StatusOK, code)
	c := decodeInto[customerView](t, body)
	assert.Zero(t, c.Checking.BalanceCents)
	assert.Equal(t, int64(2708), c.Checking.OverdraftCents)

	code, body = do(t, srv, http.MethodPost, "/customers/111/accounts/checking/deposit", `{"amount_cents":1000}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1708), decodeInto[customerView](t, body).Checking.OverdraftCents)

	code, body = do(t, srv, http.MethodGet, "/customers/111/accounts/checking/overdraft-logs", "")
	require.Equal(t, http.StatusOK, code)
	logs := decodeInto[[]overdraftLogView](t, body)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(2708), logs[0].OldOverdraftCents)
	assert.Equal(t, int64(1708), logs[0].NewOverdraftCents)

	code, body = do(t, srv, http.MethodGet, "/customers/111/accounts/checking/transactions?limit=1", "")
	require.Equal(t, http.StatusOK, code)
	rows := decodeInto[[]transactionView](t, body)
	require.Len(t, rows, 1)
	assert.Equal(t, "Deposit", rows[0].Action)
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	openCustomer(t, srv, "111", 10000, 0)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"over limit", http.MethodPost, "/customers/111/accounts/checking/withdraw", `{"amount_cents":109900}`, http.StatusUnprocessableEntity, "overdraft_limit_exceeded"},
		{"zero amount", http.MethodPost, "/customers/111/accounts/savings/deposit", `{"amount_cents":0}`, http.StatusBadRequest, "invalid_amount"},
		{"huge amount", http.MethodPost, "/customers/111/accounts/checking/withdraw", `{"amount_cents":9223372036854775807}`, http.StatusBadRequest, "amount_out_of_range"},
		{"bad account", http.MethodPost, "/customers/111/accounts/brokerage/deposit", `{"amount_cents":10}`, http.StatusBadRequest, "invalid_account_type"},
		{"bad body", http.MethodPost, "/customers/111/accounts/checking/deposit", `{`, http.StatusBadRequest, "bad_request"},
		{"no such transaction", http.MethodPost, "/customers/111/accounts/checking/disputes", `{"num_transactions_ago":1}`, http.StatusNotFound, "no_such_transaction"},
		{"same account", http.MethodPost, "/customers/111/transfers", `{"from_account":"checking","to_account":"checking","amount_cents":10}`, http.StatusBadRequest, "same_account"},
		{"unsupported crypto", http.MethodPost, "/customers/111/crypto/buy", `{"crypto_name":"DOGE","amount":"1"}`, http.StatusBadRequest, "unsupported_crypto"},
		{"oversell", http.MethodPost, "/customers/111/crypto/sell", `{"crypto_name":"ETH","amount":"1"}`, http.StatusUnprocessableEntity, "insufficient_crypto_holding"},
		{"bad limit", http.MethodGet, "/customers/111/transfers?limit=-2", "", http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, decodeInto[errorBody](t, body).Error)
		})
	}
}

func TestTransferOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	openCustomer(t, srv, "111", 5000, 0)
	openCustomer(t, srv, "222", 0, 0)

	code, body := do(t, srv, http.MethodPost, "/customers/111/transfers",
		`{"from_account":"checking","to_customer_id":"222","to_account":"savings","amount_cents":1200}`)
	require.Equal(t, http.StatusCreated, code)

	var res struct {
		Transfer  transferView `json:"transfer"`
		Sender    customerView `json:"sender"`
		Recipient customerView `json:"recipient"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, int64(3800), res.Sender.Checking.BalanceCents)
	assert.Equal(t, int64(1200), res.Recipient.Savings.BalanceCents)
	assert.Equal(t, "222", res.Transfer.To)

	code, body = do(t, srv, http.MethodGet, "/customers/222/transfers", "")
	require.Equal(t, http.StatusOK, code)
	logs := decodeInto[[]transferView](t, body)
	require.Len(t, logs, 1)
	assert.Equal(t, res.Transfer.ID, logs[0].ID)
}

func TestCryptoOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	openCustomer(t, srv, "111", 100000, 0)

	code, body := do(t, srv, http.MethodPost, "/customers/111/crypto/buy", `{"crypto_name":"eth","amount":"0.25"}`)
	require.Equal(t, http.StatusOK, code)
	receipt := decodeInto[receiptView](t, body)
	assert.Equal(t, "ETH", receipt.CryptoName)
	assert.Equal(t, int64(25000), receipt.CashCents)
	assert.Equal(t, int64(75000), receipt.Customer.Checking.BalanceCents)

	code, body = do(t, srv, http.MethodGet, "/customers/111/crypto", "")
	require.Equal(t, http.StatusOK, code)
	holdings := decodeInto[[]holdingView](t, body)
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].Amount.Equal(decimal.RequireFromString("0.25")))

	code, body = do(t, srv, http.MethodGet, "/customers/111/crypto/history", "")
	require.Equal(t, http.StatusOK, code)
	history := decodeInto[[]cryptoHistoryView](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, "CryptoBuy", history[0].Action)
}

func TestFrozenCustomerIsForbidden(t *testing.T) {
	srv := newTestServer(t)
	openCustomer(t, srv, "111", 10000, 10000)

	for _, account := range []string{"checking", "savings"} {
		code, _ := do(t, srv, http.MethodPost, "/customers/111/accounts/"+account+"/deposit", `{"amount_cents":100}`)
		require.Equal(t, http.StatusOK, code)
		code, _ = do(t, srv, http.MethodPost, "/customers/111/accounts/"+account+"/disputes", `{"num_transactions_ago":1}`)
		require.Equal(t, http.StatusOK, code)
	}

	code, body := do(t, srv, http.MethodGet, "/customers/111", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decodeInto[customerView](t, body).Frozen)

	code, body = do(t, srv, http.MethodPost, "/customers/111/accounts/checking/withdraw", `{"amount_cents":100}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "account_frozen", decodeInto[errorBody](t, body).Error)
}
