package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type names the ledger operation an event reports.
type Type string

const (
	Deposited      Type = "deposited"
	Withdrew       Type = "withdrew"
	Disputed       Type = "disputed"
	Transferred    Type = "transferred"
	CryptoBought   Type = "crypto_bought"
	CryptoSold     Type = "crypto_sold"
	CustomerOpened Type = "customer_opened"
)

// LedgerEvent is published once an operation has been committed.
type LedgerEvent struct {
	EventID             string           `json:"event_id"`
	Type                Type             `json:"type"`
	CustomerID          string           `json:"customer_id"`
	AccountType         string           `json:"account_type,omitempty"`
	Counterparty        string           `json:"counterparty,omitempty"`
	CounterpartyAccount string           `json:"counterparty_account,omitempty"`
	AmountInPennies     int64            `json:"amount_in_pennies"`
	InterestInPennies   int64            `json:"interest_in_pennies,omitempty"`
	CryptoName          string           `json:"crypto_name,omitempty"`
	CryptoAmount        *decimal.Decimal `json:"crypto_amount,omitempty"`
	CryptoPrice         *decimal.Decimal `json:"crypto_price,omitempty"`
	BalanceInPennies    int64            `json:"balance_in_pennies"`
	OverdraftInPennies  int64            `json:"overdraft_in_pennies"`
	NumFraudReversals   int              `json:"num_fraud_reversals"`
	OccurredAt          time.Time        `json:"occurred_at"`
}
