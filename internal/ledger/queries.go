package ledger

import (
	"context"
	"fmt"

	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
)

// Read-only queries. They are served even while a customer is frozen.

func (l *Ledger) Customer(ctx context.Context, customerID string) (models.Customer, error) {
	c, err := l.store.GetCustomer(ctx, customerID)
	return c, classify(err)
}

// RecentTransactions returns up to n rows of the account's history, most recent first.
func (l *Ledger) RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error) {
	if !account.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, account)
	}
	if _, err := l.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	rows, err := l.store.RecentTransactions(ctx, customerID, account, n)
	return rows, classify(err)
}

func (l *Ledger) OverdraftLogs(ctx context.Context, customerID string, account models.AccountType) ([]models.OverdraftLog, error) {
	if !account.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, account)
	}
	if _, err := l.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	logs, err := l.store.OverdraftLogs(ctx, customerID, account)
	return logs, classify(err)
}

// TransferLogs returns up to n transfers the customer sent or received, most recent first.
func (l *Ledger) TransferLogs(ctx context.Context, customerID string, n int) ([]models.TransferLog, error) {
	if _, err := l.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	logs, err := l.store.TransferLogs(ctx, customerID, n)
	return logs, classify(err)
}

func (l *Ledger) CryptoHoldings(ctx context.Context, customerID string) ([]models.CryptoHolding, error) {
	if _, err := l.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	holdings, err := l.store.CryptoHoldings(ctx, customerID)
	return holdings, classify(err)
}

func (l *Ledger) CryptoHistory(ctx context.Context, customerID string) ([]models.CryptoHistoryEntry, error) {
	if _, err := l.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	entries, err := l.store.CryptoHistory(ctx, customerID)
	return entries, classify(err)
}
