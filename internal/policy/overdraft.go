package policy

import (
	"fmt"

	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/shopspring/decimal"
)

// Overdraft resolves debits and credits against one account's state.
type Overdraft struct {
	rate  decimal.Decimal
	limit money.Cents
}

// DebitResult describes a debit that the policy accepted.
type DebitResult struct {
	State     models.AccountState
	Shortfall money.Cents // part of the debit the main balance could not cover
	Surcharge money.Cents // interest added on top of the shortfall
}

// CreditResult describes a credit. Repaid > 0 means an overdraft log row is due.
type CreditResult struct {
	State        models.AccountState
	OldOverdraft money.Cents
	NewOverdraft money.Cents
	Repaid       money.Cents
}

// TouchedOverdraft reports whether the credit was applied against debt.
func (r CreditResult) TouchedOverdraft() bool {
	return r.OldOverdraft > 0
}

// Debit takes amount out of the account. Any shortfall becomes overdraft with interest applied.
func (p Overdraft) Debit(s models.AccountState, amount money.Cents) (DebitResult, error) {
	return p.debit(s, amount, true)
}

// DebitWithoutInterest is Debit for restoring debt that was already charged interest once.
func (p Overdraft) DebitWithoutInterest(s models.AccountState, amount money.Cents) (DebitResult, error) {
	return p.debit(s, amount, false)
}

func (p Overdraft) debit(s models.AccountState, amount money.Cents, withInterest bool) (DebitResult, error) {
	if amount == 0 {
		return DebitResult{State: s}, nil
	}
	balance := s.Balance()
	if amount <= balance {
		return DebitResult{State: models.InCredit(balance - amount)}, nil
	}

	shortfall := amount - balance
	if shortfall > p.limit-s.Overdraft() {
		return DebitResult{}, fmt.Errorf("%w: shortfall %s on top of %s, limit is %s", ErrOverdraftLimitExceeded, shortfall, s.Overdraft(), p.limit)
	}
	charged := shortfall
	if withInterest {
		var err error
		if charged, err = money.ApplyRate(shortfall, p.rate); err != nil {
			return DebitResult{}, err
		}
	}

	debt := s.Overdraft() + charged
	if debt > p.limit {
		return DebitResult{}, fmt.Errorf("%w: overdraft would be %s, limit is %s", ErrOverdraftLimitExceeded, debt, p.limit)
	}

	return DebitResult{
		State:     models.InDebt(debt),
		Shortfall: shortfall,
		Surcharge: charged - shortfall,
	}, nil
}

// DebitCash takes amount from the main balance only. It never opens an overdraft.
func (p Overdraft) DebitCash(s models.AccountState, amount money.Cents) (models.AccountState, error) {
	if s.IsInDebt() || amount > s.Balance() {
		return s, fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, amount, s.Balance())
	}
	return models.InCredit(s.Balance() - amount), nil
}

// Credit adds amount to the account, paying down any overdraft first.
// It fails with money.ErrOutOfRange if the balance would overflow.
func (p Overdraft) Credit(s models.AccountState, amount money.Cents) (CreditResult, error) {
	old := s.Overdraft()
	if old == 0 {
		balance, err := money.Add(s.Balance(), amount)
		if err != nil {
			return CreditResult{}, err
		}
		return CreditResult{State: models.InCredit(balance)}, nil
	}

	if amount <= old {
		return CreditResult{
			State:        models.InDebt(old - amount),
			OldOverdraft: old,
			NewOverdraft: old - amount,
			Repaid:       amount,
		}, nil
	}

	return CreditResult{
		State:        models.InCredit(amount - old),
		OldOverdraft: old,
		Repaid:       old,
	}, nil
}
