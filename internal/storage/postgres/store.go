package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces" // interface LedgerStore
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Init creates the ledger tables if they do not exist yet.
func (p *PostgresLedgerStore) Init(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) CreateCustomer(ctx context.Context, c models.Customer) error {
	const query = `INSERT INTO customers (customer_id, checking_balance, savings_balance,
		checking_overdraft_balance, savings_overdraft_balance, num_fraud_reversals, num_deposits_for_interest)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := p.db.ExecContext(ctx, query, customerArgs(c)...)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", interfaces.ErrCustomerExists, c.ID)
	}
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	return getCustomer(ctx, p.db, customerID, false)
}

func (p *PostgresLedgerStore) RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error) {
	return recentTransactions(ctx, p.db, customerID, account, n)
}

func (p *PostgresLedgerStore) OverdraftLogs(ctx context.Context, customerID string, account models.AccountType) ([]models.OverdraftLog, error) {
	const query = `SELECT customer_id, account_type, transaction_id, ts, repayment_amount_in_pennies,
		old_overdraft_balance_in_pennies, new_overdraft_balance_in_pennies
	FROM overdraft_logs WHERE customer_id = $1 AND account_type = $2 ORDER BY seq`

	rows, err := p.db.QueryContext(ctx, query, customerID, string(account))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.OverdraftLog
	for rows.Next() {
		l, err := scanOverdraftLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (p *PostgresLedgerStore) TransferLogs(ctx context.Context, customerID string, n int) ([]models.TransferLog, error) {
	const query = `SELECT id, transfer_from, transfer_to, from_account_type, to_account_type, ts, amount_in_pennies
	FROM transfer_history WHERE transfer_from = $1 OR transfer_to = $1 ORDER BY seq DESC LIMIT $2`

	rows, err := p.db.QueryContext(ctx, query, customerID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.TransferLog
	for rows.Next() {
		var l models.TransferLog
		var from, to string
		if err := rows.Scan(&l.ID, &l.TransferFrom, &l.TransferTo, &from, &to, &l.Timestamp, &l.AmountInPennies); err != nil {
			return nil, err
		}
		l.FromAccountType, l.ToAccountType = models.AccountType(from), models.AccountType(to)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (p *PostgresLedgerStore) CryptoHoldings(ctx context.Context, customerID string) ([]models.CryptoHolding, error) {
	const query = `SELECT customer_id, crypto_name, crypto_amount FROM crypto_holdings
	WHERE customer_id = $1 ORDER BY crypto_name`

	rows, err := p.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.CryptoHolding
	for rows.Next() {
		var h models.CryptoHolding
		if err := rows.Scan(&h.CustomerID, &h.CryptoName, &h.CryptoAmount); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (p *PostgresLedgerStore) CryptoHistory(ctx context.Context, customerID string) ([]models.CryptoHistoryEntry, error) {
	const query = `SELECT id, customer_id, ts, action, crypto_name, crypto_amount, price_per_unit
	FROM crypto_history WHERE customer_id = $1 ORDER BY seq DESC`

	rows, err := p.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.CryptoHistoryEntry
	for rows.Next() {
		var e models.CryptoHistoryEntry
		var action string
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Timestamp, &action, &e.CryptoName, &e.CryptoAmount, &e.PricePerUnit); err != nil {
			return nil, err
		}
		e.Action = models.Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// WithinTx opens a database transaction, row-locks the customers in
// ascending ID order, runs fn, and commits only if fn succeeds.
func (p *PostgresLedgerStore) WithinTx(ctx context.Context, customerIDs []string, fn func(tx interfaces.LedgerTx) error) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if ids := sortedUnique(customerIDs); len(ids) > 0 {
		const lock = `SELECT customer_id FROM customers WHERE customer_id = ANY($1) ORDER BY customer_id FOR UPDATE`
		var rows *sql.Rows
		rows, err = dbTx.QueryContext(ctx, lock, pq.Array(ids))
		if err != nil {
			return err
		}
		if err = drain(rows); err != nil {
			return err
		}
	}

	if err = fn(&postgresTx{tx: dbTx}); err != nil {
		return err
	}
	return dbTx.Commit()
}

type rowIterator interface {
	Next() bool
	Err() error
	Close() error
}

// drain reads rows to the end so every row lock is taken, and reports any
// error the cursor hit on the way.
func drain(rows rowIterator) error {
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func customerArgs(c models.Customer) []any {
	return []any{
		c.ID,
		int64(c.Checking.Balance()),
		int64(c.Savings.Balance()),
		int64(c.Checking.Overdraft()),
		int64(c.Savings.Overdraft()),
		c.NumFraudReversals,
		c.NumDepositsForInterest,
	}
}

func getCustomer(ctx context.Context, q queryer, customerID string, forUpdate bool) (models.Customer, error) {
	query := `SELECT customer_id, checking_balance, savings_balance, checking_overdraft_balance,
		savings_overdraft_balance, num_fraud_reversals, num_deposits_for_interest
	FROM customers WHERE customer_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var c models.Customer
	var checking, savings, checkingOverdraft, savingsOverdraft int64
	err := q.QueryRowContext(ctx, query, customerID).Scan(
		&c.ID, &checking, &savings, &checkingOverdraft, &savingsOverdraft,
		&c.NumFraudReversals, &c.NumDepositsForInterest,
	)
	if err == sql.ErrNoRows {
		return models.Customer{}, fmt.Errorf("%w: %s", interfaces.ErrCustomerNotFound, customerID)
	}
	if err != nil {
		return models.Customer{}, err
	}

	if c.Checking, err = models.StateFromColumns(money.Cents(checking), money.Cents(checkingOverdraft)); err != nil {
		return models.Customer{}, fmt.Errorf("customer %s checking: %w", customerID, err)
	}
	if c.Savings, err = models.StateFromColumns(money.Cents(savings), money.Cents(savingsOverdraft)); err != nil {
		return models.Customer{}, fmt.Errorf("customer %s savings: %w", customerID, err)
	}
	return c, nil
}

func recentTransactions(ctx context.Context, q queryer, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error) {
	const query = `SELECT id, customer_id, account_type, ts, action, amount_in_pennies, surcharge_in_pennies
	FROM transaction_history WHERE customer_id = $1 AND account_type = $2
	ORDER BY seq DESC LIMIT $3`

	rows, err := q.QueryContext(ctx, query, customerID, string(account), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TransactionEntry
	for rows.Next() {
		var e models.TransactionEntry
		var accountType, action string
		if err := rows.Scan(&e.ID, &e.CustomerID, &accountType, &e.Timestamp, &action, &e.AmountInPennies, &e.SurchargeInPennies); err != nil {
			return nil, err
		}
		e.AccountType, e.Action = models.AccountType(accountType), models.Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanOverdraftLog(rows *sql.Rows) (models.OverdraftLog, error) {
	var l models.OverdraftLog
	var accountType string
	err := rows.Scan(&l.CustomerID, &accountType, &l.TransactionID, &l.Timestamp,
		&l.RepaymentAmountInPennies, &l.OldOverdraftBalanceInPennies, &l.NewOverdraftBalanceInPennies)
	l.AccountType = models.AccountType(accountType)
	return l, err
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
