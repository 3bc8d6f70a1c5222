package ledger

import (
	"context"
	"testing"

	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferPaysDownRecipientOverdraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "sender", 20000, 0)
	f.open(t, "recipient", 0, 0)

	c, err := f.ledger.Withdraw(ctx, "recipient", models.Checking, 10000)
	require.NoError(t, err)
	require.Equal(t, money.Cents(10200), c.Checking.Overdraft())

	res, err := f.ledger.Transfer(ctx, TransferRequest{
		From: "sender", FromAccount: models.Checking,
		To: "recipient", ToAccount: models.Checking,
		Amount: 15000,
	})
	require.NoError(t, err)

	assert.Equal(t, money.Cents(5000), res.Sender.Checking.Balance())
	assert.Zero(t, res.Recipient.Checking.Overdraft())
	assert.Equal(t, money.Cents(4800), res.Recipient.Checking.Balance())
	assert.Equal(t, res.Recipient, f.customer(t, "recipient"))

	logs, err := f.ledger.TransferLogs(ctx, "recipient", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "sender", logs[0].TransferFrom)
	assert.Equal(t, "recipient", logs[0].TransferTo)
	assert.Equal(t, money.Cents(15000), logs[0].AmountInPennies)

	odLogs, err := f.ledger.OverdraftLogs(ctx, "recipient", models.Checking)
	require.NoError(t, err)
	require.Len(t, odLogs, 1)
	assert.Equal(t, res.Log.ID, odLogs[0].TransactionID)
	assert.Equal(t, money.Cents(10200), odLogs[0].OldOverdraftBalanceInPennies)
	assert.Equal(t, money.Cents(0), odLogs[0].NewOverdraftBalanceInPennies)

	event := f.publisher.last()
	assert.Equal(t, "recipient", event.Counterparty)
	assert.Equal(t, "checking", event.CounterpartyAccount)
}

func TestTransferNeverOverdrawsSender(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "sender", 1000, 0)
	f.open(t, "recipient", 0, 0)
	before := f.customer(t, "sender")

	_, err := f.ledger.Transfer(ctx, TransferRequest{From: "sender", FromAccount: models.Checking, To: "recipient", ToAccount: models.Savings, Amount: 1001})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, before, f.customer(t, "sender"))
	assert.Zero(t, f.customer(t, "recipient").Savings.Balance())
	logs, err := f.ledger.TransferLogs(ctx, "sender", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestTransferFromAccountInDebt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "sender", 0, 0)
	f.open(t, "recipient", 0, 0)

	_, err := f.ledger.Withdraw(ctx, "sender", models.Checking, 100)
	require.NoError(t, err)

	_, err = f.ledger.Transfer(ctx, TransferRequest{From: "sender", FromAccount: models.Checking, To: "recipient", ToAccount: models.Checking, Amount: 1})
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestQuickTransferBetweenOwnAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 5000, 0)

	_, err := f.ledger.Withdraw(ctx, "111", models.Savings, 1000)
	require.NoError(t, err)

	res, err := f.ledger.Transfer(ctx, TransferRequest{From: "111", FromAccount: models.Checking, To: "111", ToAccount: models.Savings, Amount: 3000})
	require.NoError(t, err)

	c := f.customer(t, "111")
	assert.Equal(t, c, res.Sender)
	assert.Equal(t, c, res.Recipient)
	assert.Equal(t, money.Cents(2000), c.Checking.Balance())
	assert.Equal(t, money.Cents(1980), c.Savings.Balance())
	assert.Zero(t, c.Savings.Overdraft())

	logs, err := f.ledger.TransferLogs(ctx, "111", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, logs[0].TransferFrom, logs[0].TransferTo)
	assert.Equal(t, models.Checking, logs[0].FromAccountType)
	assert.Equal(t, models.Savings, logs[0].ToAccountType)
}

func TestTransferValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 5000, 0)

	tests := []struct {
		name string
		req  TransferRequest
		want error
	}{
		{
			name: "same account",
			req:  TransferRequest{From: "111", FromAccount: models.Checking, To: "111", ToAccount: models.Checking, Amount: 100},
			want: ErrSameAccount,
		},
		{
			name: "zero amount",
			req:  TransferRequest{From: "111", FromAccount: models.Checking, To: "111", ToAccount: models.Savings},
			want: ErrInvalidAmount,
		},
		{
			name: "bad account type",
			req:  TransferRequest{From: "111", FromAccount: "brokerage", To: "111", ToAccount: models.Savings, Amount: 100},
			want: ErrInvalidAccountType,
		},
		{
			name: "unknown recipient",
			req:  TransferRequest{From: "111", FromAccount: models.Checking, To: "nobody", ToAccount: models.Checking, Amount: 100},
			want: ErrCustomerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Transfer(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, money.Cents(5000), f.customer(t, "111").Checking.Balance())
		})
	}
}
