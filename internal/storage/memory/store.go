package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/shopspring/decimal"
)

type accountKey struct {
	customerID string
	account    models.AccountType
}

type holdingKey struct {
	customerID string
	cryptoName string
}

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// One mutex guards everything; WithinTx holds it for the whole unit of work,
// so transactions are fully serialized.
type MemoryLedgerStore struct {
	mu         sync.Mutex
	customers  map[string]models.Customer
	history    map[accountKey][]models.TransactionEntry // append order, oldest first
	overdrafts map[accountKey][]models.OverdraftLog
	transfers  []models.TransferLog
	holdings   map[holdingKey]decimal.Decimal
	cryptoLog  []models.CryptoHistoryEntry
}

// NewMemoryLedgerStore creates and returns an empty MemoryLedgerStore.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		customers:  make(map[string]models.Customer),
		history:    make(map[accountKey][]models.TransactionEntry),
		overdrafts: make(map[accountKey][]models.OverdraftLog),
		holdings:   make(map[holdingKey]decimal.Decimal),
	}
}

func (m *MemoryLedgerStore) CreateCustomer(ctx context.Context, c models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.customers[c.ID]; exists {
		return fmt.Errorf("%w: %s", interfaces.ErrCustomerExists, c.ID)
	}
	m.customers[c.ID] = c
	return nil
}

func (m *MemoryLedgerStore) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[customerID]
	if !ok {
		return models.Customer{}, fmt.Errorf("%w: %s", interfaces.ErrCustomerNotFound, customerID)
	}
	return c, nil
}

func (m *MemoryLedgerStore) RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return newestFirst(m.history[accountKey{customerID, account}], nil, n), nil
}

func (m *MemoryLedgerStore) OverdraftLogs(ctx context.Context, customerID string, account models.AccountType) ([]models.OverdraftLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logs := m.overdrafts[accountKey{customerID, account}]
	copied := make([]models.OverdraftLog, len(logs))
	copy(copied, logs)
	return copied, nil
}

func (m *MemoryLedgerStore) TransferLogs(ctx context.Context, customerID string, n int) ([]models.TransferLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.TransferLog
	for i := len(m.transfers) - 1; i >= 0 && len(result) < n; i-- {
		t := m.transfers[i]
		if t.TransferFrom == customerID || t.TransferTo == customerID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MemoryLedgerStore) CryptoHoldings(ctx context.Context, customerID string) ([]models.CryptoHolding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.CryptoHolding
	for k, amount := range m.holdings {
		if k.customerID == customerID {
			result = append(result, models.CryptoHolding{CustomerID: customerID, CryptoName: k.cryptoName, CryptoAmount: amount})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CryptoName < result[j].CryptoName })
	return result, nil
}

func (m *MemoryLedgerStore) CryptoHistory(ctx context.Context, customerID string) ([]models.CryptoHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.CryptoHistoryEntry
	for i := len(m.cryptoLog) - 1; i >= 0; i-- {
		if m.cryptoLog[i].CustomerID == customerID {
			result = append(result, m.cryptoLog[i])
		}
	}
	return result, nil
}

// WithinTx stages every write fn makes and applies them only if fn succeeds.
func (m *MemoryLedgerStore) WithinTx(ctx context.Context, customerIDs []string, fn func(tx interfaces.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		store:     m,
		customers: make(map[string]models.Customer),
		history:   make(map[accountKey][]models.TransactionEntry),
		holdings:  make(map[holdingKey]decimal.Decimal),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// newestFirst returns up to n rows of base followed by staged, newest first.
func newestFirst(base, staged []models.TransactionEntry, n int) []models.TransactionEntry {
	all := make([]models.TransactionEntry, 0, len(base)+len(staged))
	all = append(all, base...)
	all = append(all, staged...)

	result := make([]models.TransactionEntry, 0, n)
	for i := len(all) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, all[i])
	}
	return result
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
