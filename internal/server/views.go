package server

import (
	"time"

	"github.com/sheikh-saqib/bank-account-simulator/internal/ledger"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/shopspring/decimal"
)

type accountView struct {
	BalanceCents   int64 `json:"balance_cents"`
	OverdraftCents int64 `json:"overdraft_cents"`
}

type customerView struct {
	CustomerID             string      `json:"customer_id"`
	Checking               accountView `json:"checking"`
	Savings                accountView `json:"savings"`
	NumFraudReversals      int         `json:"num_fraud_reversals"`
	NumDepositsForInterest int         `json:"num_deposits_for_interest"`
	Frozen                 bool        `json:"frozen"`
}

func newAccountView(s models.AccountState) accountView {
	return accountView{BalanceCents: int64(s.Balance()), OverdraftCents: int64(s.Overdraft())}
}

func (h *Handler) customerView(c models.Customer) customerView {
	return customerView{
		CustomerID:             c.ID,
		Checking:               newAccountView(c.Checking),
		Savings:                newAccountView(c.Savings),
		NumFraudReversals:      c.NumFraudReversals,
		NumDepositsForInterest: c.NumDepositsForInterest,
		Frozen:                 c.NumFraudReversals >= h.maxDisputes,
	}
}

type transactionView struct {
	ID          string    `json:"id"`
	AccountType string    `json:"account_type"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	AmountCents int64     `json:"amount_cents"`
}

func newTransactionViews(rows []models.TransactionEntry) []transactionView {
	out := make([]transactionView, 0, len(rows))
	for _, e := range rows {
		out = append(out, transactionView{
			ID:          e.ID,
			AccountType: string(e.AccountType),
			Timestamp:   e.Timestamp,
			Action:      string(e.Action),
			AmountCents: int64(e.AmountInPennies),
		})
	}
	return out
}

type overdraftLogView struct {
	TransactionID     string    `json:"transaction_id"`
	Timestamp         time.Time `json:"timestamp"`
	RepaymentCents    int64     `json:"repayment_cents"`
	OldOverdraftCents int64     `json:"old_overdraft_cents"`
	NewOverdraftCents int64     `json:"new_overdraft_cents"`
}

func newOverdraftLogViews(logs []models.OverdraftLog) []overdraftLogView {
	out := make([]overdraftLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, overdraftLogView{
			TransactionID:     l.TransactionID,
			Timestamp:         l.Timestamp,
			RepaymentCents:    int64(l.RepaymentAmountInPennies),
			OldOverdraftCents: int64(l.OldOverdraftBalanceInPennies),
			NewOverdraftCents: int64(l.NewOverdraftBalanceInPennies),
		})
	}
	return out
}

type transferView struct {
	ID          string    `json:"id"`
	From        string    `json:"from_customer_id"`
	FromAccount string    `json:"from_account"`
	To          string    `json:"to_customer_id"`
	ToAccount   string    `json:"to_account"`
	Timestamp   time.Time `json:"timestamp"`
	AmountCents int64     `json:"amount_cents"`
}

func newTransferView(l models.TransferLog) transferView {
	return transferView{
		ID:          l.ID,
		From:        l.TransferFrom,
		FromAccount: string(l.FromAccountType),
		To:          l.TransferTo,
		ToAccount:   string(l.ToAccountType),
		Timestamp:   l.Timestamp,
		AmountCents: int64(l.AmountInPennies),
	}
}

type holdingView struct {
	CryptoName string          `json:"crypto_name"`
	Amount     decimal.Decimal `json:"amount"`
}

type cryptoHistoryView struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Action       string          `json:"action"`
	CryptoName   string          `json:"crypto_name"`
	Amount       decimal.Decimal `json:"amount"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

type receiptView struct {
	Customer     customerView    `json:"customer"`
	CryptoName   string          `json:"crypto_name"`
	Amount       decimal.Decimal `json:"amount"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CashCents    int64           `json:"cash_cents"`
	Holding      decimal.Decimal `json:"holding"`
}

func (h *Handler) receiptView(r ledger.CryptoReceipt) receiptView {
	return receiptView{
		Customer:     h.customerView(r.Customer),
		CryptoName:   r.CryptoName,
		Amount:       r.CryptoAmount,
		PricePerUnit: r.PricePerUnit,
		CashCents:    int64(r.Cash),
		Holding:      r.Holding,
	}
}
