package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
)

// LedgerStore is the Data Store the ledger reads from and writes to.
// Reads outside WithinTx see committed state only.
type LedgerStore interface {
	CreateCustomer(ctx context.Context, c models.Customer) error
	GetCustomer(ctx context.Context, customerID string) (models.Customer, error)

	// RecentTransactions returns up to n rows, most recent first.
	RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error)
	OverdraftLogs(ctx context.Context, customerID string, account models.AccountType) ([]models.OverdraftLog, error)
	// TransferLogs returns up to n transfers the customer sent or received, most recent first.
	TransferLogs(ctx context.Context, customerID string, n int) ([]models.TransferLog, error)
	CryptoHoldings(ctx context.Context, customerID string) ([]models.CryptoHolding, error)
	CryptoHistory(ctx context.Context, customerID string) ([]models.CryptoHistoryEntry, error)

	// WithinTx runs fn as one atomic unit over the given customers. Nothing fn
	// writes is visible unless fn returns nil and the commit succeeds.
	WithinTx(ctx context.Context, customerIDs []string, fn func(tx LedgerTx) error) error
}

// LedgerTx is the view of the Data Store inside one atomic unit.
type LedgerTx interface {
	GetCustomer(ctx context.Context, customerID string) (models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer) error

	AppendTransaction(ctx context.Context, e models.TransactionEntry) error
	RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error)

	AppendOverdraftLog(ctx context.Context, l models.OverdraftLog) error
	// OverdraftLogFor finds the overdraft row written by the given transaction, if any.
	OverdraftLogFor(ctx context.Context, customerID string, account models.AccountType, transactionID string) (models.OverdraftLog, bool, error)

	AppendTransferLog(ctx context.Context, l models.TransferLog) error

	// GetCryptoHolding reports false when the customer never held cryptoName.
	GetCryptoHolding(ctx context.Context, customerID, cryptoName string) (decimal.Decimal, bool, error)
	SetCryptoHolding(ctx context.Context, h models.CryptoHolding) error
	AppendCryptoHistory(ctx context.Context, e models.CryptoHistoryEntry) error
}
