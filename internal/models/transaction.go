package models

import (
	"time"

	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
)

// Action is the kind of a TransactionHistory row. The sign of the amount is implied by it.
type Action string

const (
	ActionDeposit    Action = "Deposit"
	ActionWithdraw   Action = "Withdraw"
	ActionCryptoBuy  Action = "CryptoBuy"
	ActionCryptoSell Action = "CryptoSell"
)

// Opposite returns the action that undoes a, for the actions a dispute can reverse.
func (a Action) Opposite() (Action, bool) {
	switch a {
	case ActionDeposit:
		return ActionWithdraw, true
	case ActionWithdraw:
		return ActionDeposit, true
	}
	return "", false
}

// TransactionEntry is one append-only row of an account's transaction history.
type TransactionEntry struct {
	ID              string
	CustomerID      string
	AccountType     AccountType
	Timestamp       time.Time
	Action          Action
	AmountInPennies money.Cents // never negative

	// SurchargeInPennies is the overdraft interest this row charged on top of
	// AmountInPennies. Only withdrawals carry one.
	SurchargeInPennies money.Cents
}

// OverdraftLog records a credit that reduced a nonzero overdraft.
// TransactionID points at the history row or transfer that made the repayment.
type OverdraftLog struct {
	CustomerID                   string
	AccountType                  AccountType
	TransactionID                string
	Timestamp                    time.Time
	RepaymentAmountInPennies     money.Cents
	OldOverdraftBalanceInPennies money.Cents
	NewOverdraftBalanceInPennies money.Cents
}

// Repaid is how much of the overdraft the credit actually paid off.
func (l OverdraftLog) Repaid() money.Cents {
	return l.OldOverdraftBalanceInPennies - l.NewOverdraftBalanceInPennies
}

// TransferLog records a completed transfer. From == To for a quick transfer
// between one customer's own accounts.
type TransferLog struct {
	ID              string
	TransferFrom    string
	TransferTo      string
	FromAccountType AccountType
	ToAccountType   AccountType
	Timestamp       time.Time
	AmountInPennies money.Cents
}
