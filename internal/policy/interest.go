package policy

import (
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/shopspring/decimal"
)

// Interest pays balance interest every n-th qualifying deposit.
type Interest struct {
	every      int
	minDeposit money.Cents
	rate       decimal.Decimal
}

// AfterDeposit counts a deposit of amount that left the account in state s.
// It returns the new state, the new counter, and the interest paid (if any).
func (i Interest) AfterDeposit(s models.AccountState, amount money.Cents, counter int) (models.AccountState, int, money.Cents, error) {
	if i.every <= 0 || amount < i.minDeposit || s.IsInDebt() {
		return s, counter, 0, nil
	}

	counter++
	if counter < i.every {
		return s, counter, 0, nil
	}

	grown, err := money.ApplyRate(s.Balance(), i.rate)
	if err != nil {
		return s, counter, 0, err
	}
	return models.InCredit(grown), 0, grown - s.Balance(), nil
}
