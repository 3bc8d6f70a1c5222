package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
)

// AccountType selects one of a customer's two cash accounts.
type AccountType string

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
)

// ParseAccountType accepts "checking" or "savings" in any case.
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t AccountType) Valid() bool {
	return t == Checking || t == Savings
}

// ErrInconsistentAccountState is returned when stored columns hold both a
// positive main balance and a positive overdraft for the same account.
var ErrInconsistentAccountState = errors.New("account has both a balance and an overdraft")

// AccountState is either a non-negative main balance (in credit) or an
// outstanding overdraft (in debt). The zero value is an empty account in credit.
type AccountState struct {
	inDebt bool
	amount money.Cents
}

// InCredit returns a state holding balance on the main account.
func InCredit(balance money.Cents) AccountState {
	return AccountState{amount: balance}
}

// InDebt returns a state owing overdraft. Zero debt collapses to an empty account in credit.
func InDebt(overdraft money.Cents) AccountState {
	if overdraft == 0 {
		return AccountState{}
	}
	return AccountState{inDebt: true, amount: overdraft}
}

// StateFromColumns rebuilds a state from the stored balance/overdraft pair.
func StateFromColumns(balance, overdraft money.Cents) (AccountState, error) {
	switch {
	case balance < 0 || overdraft < 0:
		return AccountState{}, fmt.Errorf("%w: negative column (balance=%d overdraft=%d)", ErrInconsistentAccountState, balance, overdraft)
	case balance > 0 && overdraft > 0:
		return AccountState{}, fmt.Errorf("%w (balance=%d overdraft=%d)", ErrInconsistentAccountState, balance, overdraft)
	case overdraft > 0:
		return InDebt(overdraft), nil
	default:
		return InCredit(balance), nil
	}
}

func (s AccountState) IsInDebt() bool { return s.inDebt }

// Balance is the main balance; 0 while in debt.
func (s AccountState) Balance() money.Cents {
	if s.inDebt {
		return 0
	}
	return s.amount
}

// Overdraft is the outstanding debt; 0 while in credit.
func (s AccountState) Overdraft() money.Cents {
	if s.inDebt {
		return s.amount
	}
	return 0
}

func (s AccountState) String() string {
	if s.inDebt {
		return "in debt " + s.amount.String()
	}
	return "in credit " + s.amount.String()
}
