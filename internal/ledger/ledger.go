package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models/events"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/sheikh-saqib/bank-account-simulator/internal/policy"
)

const defaultPriceTimeout = 5 * time.Second

// Config wires the ledger's collaborators. Zero fields fall back to defaults.
type Config struct {
	// Policy thresholds. A zero OverdraftInterestRate means policy.Default().
	Policy policy.Config

	// Publisher receives one event per committed operation. Nil disables events.
	Publisher interfaces.EventPublisher

	// Prices quotes crypto prices. Without it every trade fails with ErrInvalidCryptoPrice.
	Prices       interfaces.PriceClient
	PriceTimeout time.Duration

	Logger *slog.Logger
	Clock  func() time.Time
}

// Ledger applies deposits, withdrawals, disputes, transfers and crypto trades
// to customer accounts. Each operation runs as one atomic unit of the store,
// serialized per customer.
type Ledger struct {
	store        interfaces.LedgerStore
	publisher    interfaces.EventPublisher
	prices       interfaces.PriceClient
	priceTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time

	policy    policy.Config
	overdraft policy.Overdraft
	fraud     policy.Fraud
	interest  policy.Interest

	muMap map[string]*sync.Mutex // one mutex per customer ID
	mapMu sync.Mutex             // protects muMap
}

// NewLedger creates a Ledger over store.
func NewLedger(store interfaces.LedgerStore, cfg Config) *Ledger {
	if cfg.Policy.OverdraftInterestRate.IsZero() {
		cfg.Policy = policy.Default()
	}
	if cfg.Policy.MaxAmount <= 0 {
		cfg.Policy.MaxAmount = policy.Default().MaxAmount
	}
	if cfg.PriceTimeout == 0 {
		cfg.PriceTimeout = defaultPriceTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}

	return &Ledger{
		store:        store,
		publisher:    cfg.Publisher,
		prices:       cfg.Prices,
		priceTimeout: cfg.PriceTimeout,
		logger:       cfg.Logger,
		now:          cfg.Clock,
		policy:       cfg.Policy,
		overdraft:    cfg.Policy.Overdraft(),
		fraud:        cfg.Policy.Fraud(),
		interest:     cfg.Policy.Interest(),
		muMap:        make(map[string]*sync.Mutex),
	}
}

// Policy returns the thresholds the ledger runs with.
func (l *Ledger) Policy() policy.Config {
	return l.policy
}

func (l *Ledger) getCustomerLock(customerID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[customerID]; !exists {
		l.muMap[customerID] = &sync.Mutex{}
	}
	return l.muMap[customerID]
}

// lockCustomers locks every distinct ID in ascending order so two transfers
// running in opposite directions cannot deadlock.
func (l *Ledger) lockCustomers(ids ...string) (unlock func()) {
	sorted := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, len(sorted))
	for i, id := range sorted {
		locks[i] = l.getCustomerLock(id)
		locks[i].Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// run executes fn as one atomic unit over the given customers.
func (l *Ledger) run(ctx context.Context, customerIDs []string, fn func(tx interfaces.LedgerTx) error) error {
	unlock := l.lockCustomers(customerIDs...)
	defer unlock()

	return classify(l.store.WithinTx(ctx, customerIDs, fn))
}

// loadActive reads a customer inside tx and rejects frozen ones.
func (l *Ledger) loadActive(ctx context.Context, tx interfaces.LedgerTx, customerID string) (models.Customer, error) {
	c, err := tx.GetCustomer(ctx, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	return c, l.fraud.CheckNotFrozen(c)
}

// credit pays amount into the account, logging an overdraft repayment
// against transactionID when the account was in debt.
func (l *Ledger) credit(ctx context.Context, tx interfaces.LedgerTx, c *models.Customer, account models.AccountType, amount money.Cents, transactionID string, at time.Time) error {
	res, err := l.overdraft.Credit(c.Account(account), amount)
	if err != nil {
		return err
	}
	c.SetAccount(account, res.State)
	if !res.TouchedOverdraft() {
		return nil
	}

	return tx.AppendOverdraftLog(ctx, models.OverdraftLog{
		CustomerID:                   c.ID,
		AccountType:                  account,
		TransactionID:                transactionID,
		Timestamp:                    at,
		RepaymentAmountInPennies:     amount,
		OldOverdraftBalanceInPennies: res.OldOverdraft,
		NewOverdraftBalanceInPennies: res.NewOverdraft,
	})
}

func classify(err error) error {
	if err == nil || IsRejection(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func (l *Ledger) validate(account models.AccountType, amount money.Cents) error {
	if !account.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, account)
	}
	return l.checkAmount(amount)
}

// checkAmount accepts 0 < amount <= MaxAmount.
func (l *Ledger) checkAmount(amount money.Cents) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d cents", ErrInvalidAmount, amount)
	}
	if amount > l.policy.MaxAmount {
		return fmt.Errorf("%w: %s is over the %s maximum", ErrAmountOutOfRange, amount, l.policy.MaxAmount)
	}
	return nil
}

func (l *Ledger) finish(op, customerID string, err error) {
	switch {
	case err == nil:
		l.logger.Info("ledger operation applied", "op", op, "customer_id", customerID)
	case IsRejection(err):
		l.logger.Warn("ledger operation rejected", "op", op, "customer_id", customerID, "error", err)
	default:
		l.logger.Error("ledger operation failed", "op", op, "customer_id", customerID, "error", err)
	}
}

func newEvent(t events.Type, c models.Customer, account models.AccountType, amount money.Cents) events.LedgerEvent {
	s := c.Account(account)
	return events.LedgerEvent{
		Type:               t,
		CustomerID:         c.ID,
		AccountType:        string(account),
		AmountInPennies:    int64(amount),
		BalanceInPennies:   int64(s.Balance()),
		OverdraftInPennies: int64(s.Overdraft()),
		NumFraudReversals:  c.NumFraudReversals,
	}
}

// publish emits ev after a commit. A failed publish is logged only; the
// operation it reports has already happened.
func (l *Ledger) publish(ctx context.Context, ev events.LedgerEvent, at time.Time) {
	if l.publisher == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = at

	if err := l.publisher.Publish(context.WithoutCancel(ctx), ev.CustomerID, ev); err != nil {
		l.logger.Error("publish ledger event", "event_type", ev.Type, "customer_id", ev.CustomerID, "error", err)
	}
}
