package memory

import (
	"context"
	"fmt"

	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/shopspring/decimal"
)

// memTx buffers writes on top of the store. The store mutex is held by
// WithinTx for its whole lifetime, so reads of store maps are safe here.
type memTx struct {
	store *MemoryLedgerStore

	customers  map[string]models.Customer
	history    map[accountKey][]models.TransactionEntry
	overdrafts []models.OverdraftLog
	transfers  []models.TransferLog
	holdings   map[holdingKey]decimal.Decimal
	cryptoLog  []models.CryptoHistoryEntry
}

func (t *memTx) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	if c, ok := t.customers[customerID]; ok {
		return c, nil
	}
	c, ok := t.store.customers[customerID]
	if !ok {
		return models.Customer{}, fmt.Errorf("%w: %s", interfaces.ErrCustomerNotFound, customerID)
	}
	return c, nil
}

func (t *memTx) UpdateCustomer(ctx context.Context, c models.Customer) error {
	if _, err := t.GetCustomer(ctx, c.ID); err != nil {
		return err
	}
	t.customers[c.ID] = c
	return nil
}

func (t *memTx) AppendTransaction(ctx context.Context, e models.TransactionEntry) error {
	k := accountKey{e.CustomerID, e.AccountType}
	t.history[k] = append(t.history[k], e)
	return nil
}

func (t *memTx) RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error) {
	k := accountKey{customerID, account}
	return newestFirst(t.store.history[k], t.history[k], n), nil
}

func (t *memTx) AppendOverdraftLog(ctx context.Context, l models.OverdraftLog) error {
	t.overdrafts = append(t.overdrafts, l)
	return nil
}

func (t *memTx) OverdraftLogFor(ctx context.Context, customerID string, account models.AccountType, transactionID string) (models.OverdraftLog, bool, error) {
	for _, l := range t.store.overdrafts[accountKey{customerID, account}] {
		if l.TransactionID == transactionID {
			return l, true, nil
		}
	}
	for _, l := range t.overdrafts {
		if l.CustomerID == customerID && l.AccountType == account && l.TransactionID == transactionID {
			return l, true, nil
		}
	}
	return models.OverdraftLog{}, false, nil
}

func (t *memTx) AppendTransferLog(ctx context.Context, l models.TransferLog) error {
	t.transfers = append(t.transfers, l)
	return nil
}

func (t *memTx) GetCryptoHolding(ctx context.Context, customerID, cryptoName string) (decimal.Decimal, bool, error) {
	k := holdingKey{customerID, cryptoName}
	if amount, ok := t.holdings[k]; ok {
		return amount, true, nil
	}
	amount, ok := t.store.holdings[k]
	return amount, ok, nil
}

func (t *memTx) SetCryptoHolding(ctx context.Context, h models.CryptoHolding) error {
	if h.CryptoAmount.IsNegative() {
		return fmt.Errorf("negative %s holding for %s", h.CryptoName, h.CustomerID)
	}
	t.holdings[holdingKey{h.CustomerID, h.CryptoName}] = h.CryptoAmount
	return nil
}

func (t *memTx) AppendCryptoHistory(ctx context.Context, e models.CryptoHistoryEntry) error {
	t.cryptoLog = append(t.cryptoLog, e)
	return nil
}

func (t *memTx) commit() {
	s := t.store
	for id, c := range t.customers {
		s.customers[id] = c
	}
	for k, entries := range t.history {
		s.history[k] = append(s.history[k], entries...)
	}
	for _, l := range t.overdrafts {
		k := accountKey{l.CustomerID, l.AccountType}
		s.overdrafts[k] = append(s.overdrafts[k], l)
	}
	s.transfers = append(s.transfers, t.transfers...)
	for k, amount := range t.holdings {
		s.holdings[k] = amount
	}
	s.cryptoLog = append(s.cryptoLog, t.cryptoLog...)
}

var _ interfaces.LedgerTx = (*memTx)(nil)
