package models

import (
	"testing"

	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateFromColumns(t *testing.T) {
	tests := []struct {
		name      string
		balance   int64
		overdraft int64
		wantDebt  bool
		wantErr   bool
	}{
		{name: "empty", balance: 0, overdraft: 0},
		{name: "in credit", balance: 500, overdraft: 0},
		{name: "in debt", balance: 0, overdraft: 102, wantDebt: true},
		{name: "both positive", balance: 100000, overdraft: 5000, wantErr: true},
		{name: "negative balance", balance: -1, overdraft: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StateFromColumns(money.Cents(tt.balance), money.Cents(tt.overdraft))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInconsistentAccountState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebt, s.IsInDebt())
			assert.EqualValues(t, tt.balance, s.Balance())
			assert.EqualValues(t, tt.overdraft, s.Overdraft())
		})
	}
}

func TestInDebtZeroCollapses(t *testing.T) {
	s := InDebt(0)
	assert.False(t, s.IsInDebt())
	assert.Equal(t, AccountState{}, s)
}

func TestCustomerAccount(t *testing.T) {
	c := Customer{ID: "c1"}
	c.SetAccount(Savings, InDebt(250))
	c.SetAccount(Checking, InCredit(1000))

	assert.EqualValues(t, 250, c.Account(Savings).Overdraft())
	assert.EqualValues(t, 1000, c.Account(Checking).Balance())
}

func TestParseAccountType(t *testing.T) {
	at, ok := ParseAccountType(" Savings ")
	assert.True(t, ok)
	assert.Equal(t, Savings, at)

	_, ok = ParseAccountType("brokerage")
	assert.False(t, ok)
}

func TestActionOpposite(t *testing.T) {
	op, ok := ActionDeposit.Opposite()
	assert.True(t, ok)
	assert.Equal(t, ActionWithdraw, op)

	op, ok = ActionWithdraw.Opposite()
	assert.True(t, ok)
	assert.Equal(t, ActionDeposit, op)

	_, ok = ActionCryptoBuy.Opposite()
	assert.False(t, ok)
}
