package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models/events"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/sheikh-saqib/bank-account-simulator/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyCrypto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 100000, 0)

	r, err := f.ledger.BuyCrypto(ctx, "111", "eth", decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	assert.Equal(t, "ETH", r.CryptoName)
	assert.Equal(t, money.Cents(10000), r.Cash)
	assert.Equal(t, money.Cents(90000), r.Customer.Checking.Balance())
	assert.True(t, r.Holding.Equal(decimal.RequireFromString("0.1")))

	rows := f.history(t, "111", models.Checking)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ActionCryptoBuy, rows[0].Action)
	assert.Equal(t, money.Cents(10000), rows[0].AmountInPennies)

	history, err := f.ledger.CryptoHistory(ctx, "111")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ActionCryptoBuy, history[0].Action)
	assert.True(t, history[0].PricePerUnit.Equal(decimal.NewFromInt(1000)))

	event := f.publisher.last()
	assert.Equal(t, events.CryptoBought, event.Type)
	assert.Equal(t, "ETH", event.CryptoName)
}

func TestBuyCryptoNeverUsesOverdraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 5000, 0)

	_, err := f.ledger.BuyCrypto(ctx, "111", "ETH", decimal.RequireFromString("0.1"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = f.ledger.Withdraw(ctx, "111", models.Checking, 6000)
	require.NoError(t, err)
	before := f.customer(t, "111")

	_, err = f.ledger.BuyCrypto(ctx, "111", "SOL", decimal.RequireFromString("0.001"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, before, f.customer(t, "111"))

	holdings, err := f.ledger.CryptoHoldings(ctx, "111")
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestSellCryptoPaysOffOverdraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 10000, 0)

	_, err := f.ledger.BuyCrypto(ctx, "111", "ETH", decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	// 4902 short becomes exactly $50.00 of debt.
	c, err := f.ledger.Withdraw(ctx, "111", models.Checking, 4902)
	require.NoError(t, err)
	require.Equal(t, money.Cents(5000), c.Checking.Overdraft())

	r, err := f.ledger.SellCrypto(ctx, "111", "ETH", decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	assert.Equal(t, money.Cents(10000), r.Cash)
	assert.Zero(t, r.Customer.Checking.Overdraft())
	assert.Equal(t, money.Cents(5000), r.Customer.Checking.Balance())
	assert.True(t, r.Holding.IsZero())

	rows := f.history(t, "111", models.Checking)
	assert.Equal(t, models.ActionCryptoSell, rows[0].Action)

	logs, err := f.ledger.OverdraftLogs(ctx, "111", models.Checking)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, rows[0].ID, logs[0].TransactionID)
	assert.Equal(t, money.Cents(5000), logs[0].OldOverdraftBalanceInPennies)
}

func TestSellMoreThanHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 100000, 0)

	_, err := f.ledger.SellCrypto(ctx, "111", "SOL", decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrInsufficientCryptoHolding)

	_, err = f.ledger.BuyCrypto(ctx, "111", "SOL", decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	before := f.customer(t, "111")

	_, err = f.ledger.SellCrypto(ctx, "111", "SOL", decimal.RequireFromString("0.50000001"))
	require.ErrorIs(t, err, ErrInsufficientCryptoHolding)
	assert.Equal(t, before, f.customer(t, "111"))
}

func TestCryptoInputRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "111", 100000, 0)

	_, err := f.ledger.BuyCrypto(ctx, "111", "DOGE", decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrUnsupportedCrypto)

	_, err = f.ledger.BuyCrypto(ctx, "111", "ETH", decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// 0.000001 ETH at $1000 is a tenth of a cent.
	_, err = f.ledger.BuyCrypto(ctx, "111", "ETH", decimal.RequireFromString("0.000001"))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCryptoPriceFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		prices fakePrices
	}{
		{name: "client error", prices: fakePrices{err: errors.New("timeout")}},
		{name: "zero price", prices: fakePrices{prices: map[string]decimal.Decimal{"ETH": decimal.Zero}}},
		{name: "negative price", prices: fakePrices{prices: map[string]decimal.Decimal{"ETH": decimal.NewFromInt(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewMemoryLedgerStore()
			l := NewLedger(store, Config{Prices: tt.prices, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
			_, err := l.OpenCustomer(ctx, "111", 100000, 0)
			require.NoError(t, err)

			_, err = l.BuyCrypto(ctx, "111", "ETH", decimal.NewFromInt(1))
			require.ErrorIs(t, err, ErrInvalidCryptoPrice)

			c, err := l.Customer(ctx, "111")
			require.NoError(t, err)
			assert.Equal(t, money.Cents(100000), c.Checking.Balance())
		})
	}

	l := NewLedger(memory.NewMemoryLedgerStore(), Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	_, err := l.OpenCustomer(ctx, "111", 100000, 0)
	require.NoError(t, err)
	_, err = l.SellCrypto(ctx, "111", "ETH", decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrInvalidCryptoPrice)
}
