package postgres

import (
	"context"
	"database/sql"
	"fmt"

	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/shopspring/decimal"
)

// postgresTx is the LedgerTx handed to WithinTx callbacks. The customer
// rows it touches are already locked FOR UPDATE.
type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	return getCustomer(ctx, t.tx, customerID, true)
}

func (t *postgresTx) UpdateCustomer(ctx context.Context, c models.Customer) error {
	const query = `UPDATE customers SET checking_balance = $2, savings_balance = $3,
		checking_overdraft_balance = $4, savings_overdraft_balance = $5,
		num_fraud_reversals = $6, num_deposits_for_interest = $7
	WHERE customer_id = $1`

	res, err := t.tx.ExecContext(ctx, query, customerArgs(c)...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", interfaces.ErrCustomerNotFound, c.ID)
	}
	return nil
}

func (t *postgresTx) AppendTransaction(ctx context.Context, e models.TransactionEntry) error {
	const query = `INSERT INTO transaction_history (id, customer_id, account_type, ts, action, amount_in_pennies, surcharge_in_pennies)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := t.tx.ExecContext(ctx, query,
		e.ID, e.CustomerID, string(e.AccountType), e.Timestamp, string(e.Action),
		int64(e.AmountInPennies), int64(e.SurchargeInPennies))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (t *postgresTx) RecentTransactions(ctx context.Context, customerID string, account models.AccountType, n int) ([]models.TransactionEntry, error) {
	return recentTransactions(ctx, t.tx, customerID, account, n)
}

func (t *postgresTx) AppendOverdraftLog(ctx context.Context, l models.OverdraftLog) error {
	const query = `INSERT INTO overdraft_logs (customer_id, account_type, transaction_id, ts,
		repayment_amount_in_pennies, old_overdraft_balance_in_pennies, new_overdraft_balance_in_pennies)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := t.tx.ExecContext(ctx, query,
		l.CustomerID, string(l.AccountType), l.TransactionID, l.Timestamp,
		int64(l.RepaymentAmountInPennies), int64(l.OldOverdraftBalanceInPennies), int64(l.NewOverdraftBalanceInPennies))
	if err != nil {
		return fmt.Errorf("insert overdraft log: %w", err)
	}
	return nil
}

func (t *postgresTx) OverdraftLogFor(ctx context.Context, customerID string, account models.AccountType, transactionID string) (models.OverdraftLog, bool, error) {
	const query = `SELECT customer_id, account_type, transaction_id, ts, repayment_amount_in_pennies,
		old_overdraft_balance_in_pennies, new_overdraft_balance_in_pennies
	FROM overdraft_logs WHERE customer_id = $1 AND account_type = $2 AND transaction_id = $3
	ORDER BY seq LIMIT 1`

	rows, err := t.tx.QueryContext(ctx, query, customerID, string(account), transactionID)
	if err != nil {
		return models.OverdraftLog{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return models.OverdraftLog{}, false, rows.Err()
	}
	l, err := scanOverdraftLog(rows)
	if err != nil {
		return models.OverdraftLog{}, false, err
	}
	return l, true, nil
}

func (t *postgresTx) AppendTransferLog(ctx context.Context, l models.TransferLog) error {
	const query = `INSERT INTO transfer_history (id, transfer_from, transfer_to, from_account_type, to_account_type, ts, amount_in_pennies)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := t.tx.ExecContext(ctx, query,
		l.ID, l.TransferFrom, l.TransferTo, string(l.FromAccountType), string(l.ToAccountType), l.Timestamp, int64(l.AmountInPennies))
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (t *postgresTx) GetCryptoHolding(ctx context.Context, customerID, cryptoName string) (decimal.Decimal, bool, error) {
	const query = `SELECT crypto_amount FROM crypto_holdings WHERE customer_id = $1 AND crypto_name = $2`

	var amount decimal.Decimal
	err := t.tx.QueryRowContext(ctx, query, customerID, cryptoName).Scan(&amount)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return amount, true, nil
}

func (t *postgresTx) SetCryptoHolding(ctx context.Context, h models.CryptoHolding) error {
	if h.CryptoAmount.IsNegative() {
		return fmt.Errorf("negative %s holding for %s", h.CryptoName, h.CustomerID)
	}

	const query = `INSERT INTO crypto_holdings (customer_id, crypto_name, crypto_amount)
	VALUES ($1,$2,$3)
	ON CONFLICT (customer_id, crypto_name) DO UPDATE SET crypto_amount = EXCLUDED.crypto_amount`

	if _, err := t.tx.ExecContext(ctx, query, h.CustomerID, h.CryptoName, h.CryptoAmount); err != nil {
		return fmt.Errorf("upsert crypto holding: %w", err)
	}
	return nil
}

func (t *postgresTx) AppendCryptoHistory(ctx context.Context, e models.CryptoHistoryEntry) error {
	const query = `INSERT INTO crypto_history (id, customer_id, ts, action, crypto_name, crypto_amount, price_per_unit)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := t.tx.ExecContext(ctx, query,
		e.ID, e.CustomerID, e.Timestamp, string(e.Action), e.CryptoName, e.CryptoAmount, e.PricePerUnit)
	if err != nil {
		return fmt.Errorf("insert crypto history: %w", err)
	}
	return nil
}

var _ interfaces.LedgerTx = (*postgresTx)(nil)
