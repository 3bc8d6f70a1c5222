package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sheikh-saqib/bank-account-simulator/internal/ledger"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorStatus = []struct {
	err    error
	code   string
	status int
}{
	{ledger.ErrAccountFrozen, "account_frozen", http.StatusForbidden},
	{ledger.ErrOverdraftLimitExceeded, "overdraft_limit_exceeded", http.StatusUnprocessableEntity},
	{ledger.ErrInsufficientFunds, "insufficient_funds", http.StatusUnprocessableEntity},
	{ledger.ErrInsufficientCryptoHolding, "insufficient_crypto_holding", http.StatusUnprocessableEntity},
	{ledger.ErrTransactionNotReversible, "transaction_not_reversible", http.StatusUnprocessableEntity},
	{ledger.ErrInvalidAmount, "invalid_amount", http.StatusBadRequest},
	{ledger.ErrAmountOutOfRange, "amount_out_of_range", http.StatusBadRequest},
	{ledger.ErrInvalidAccountType, "invalid_account_type", http.StatusBadRequest},
	{ledger.ErrInvalidCustomerID, "invalid_customer_id", http.StatusBadRequest},
	{ledger.ErrSameAccount, "same_account", http.StatusBadRequest},
	{ledger.ErrUnsupportedCrypto, "unsupported_crypto", http.StatusBadRequest},
	{ledger.ErrCustomerNotFound, "customer_not_found", http.StatusNotFound},
	{ledger.ErrNoSuchTransaction, "no_such_transaction", http.StatusNotFound},
	{ledger.ErrCustomerExists, "customer_exists", http.StatusConflict},
	{ledger.ErrInvalidCryptoPrice, "invalid_crypto_price", http.StatusBadGateway},
	{ledger.ErrStoreUnavailable, "store_unavailable", http.StatusServiceUnavailable},
}

// writeErr maps ledger errors onto HTTP statuses with a stable error code.
func writeErr(w http.ResponseWriter, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, errorBody{Error: e.code, Message: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: msg})
}
