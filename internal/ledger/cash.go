package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models/events"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
)

// OpenCustomer registers a customer with the given opening balances.
func (l *Ledger) OpenCustomer(ctx context.Context, customerID string, checking, savings money.Cents) (c models.Customer, err error) {
	defer func() { l.finish("open", customerID, err) }()

	if strings.TrimSpace(customerID) == "" {
		return models.Customer{}, ErrInvalidCustomerID
	}
	if checking < 0 || savings < 0 {
		return models.Customer{}, fmt.Errorf("%w: opening balances must not be negative", ErrInvalidAmount)
	}
	if checking > l.policy.MaxAmount || savings > l.policy.MaxAmount {
		return models.Customer{}, fmt.Errorf("%w: opening balances may not exceed %s", ErrAmountOutOfRange, l.policy.MaxAmount)
	}

	c = models.Customer{
		ID:       customerID,
		Checking: models.InCredit(checking),
		Savings:  models.InCredit(savings),
	}

	unlock := l.lockCustomers(customerID)
	defer unlock()
	if err := classify(l.store.CreateCustomer(ctx, c)); err != nil {
		return models.Customer{}, err
	}

	ev := newEvent(events.CustomerOpened, c, models.Checking, checking+savings)
	l.publish(ctx, ev, l.now())
	return c, nil
}

// Deposit credits amount to the account, paying down any overdraft first.
func (l *Ledger) Deposit(ctx context.Context, customerID string, account models.AccountType, amount money.Cents) (c models.Customer, err error) {
	defer func() { l.finish("deposit", customerID, err) }()

	if err := l.validate(account, amount); err != nil {
		return models.Customer{}, err
	}

	var at time.Time
	var interest money.Cents
	err = l.run(ctx, []string{customerID}, func(tx interfaces.LedgerTx) error {
		var err error
		if c, err = l.loadActive(ctx, tx, customerID); err != nil {
			return err
		}
		at = l.now()

		entry := models.TransactionEntry{
			ID:              uuid.NewString(),
			CustomerID:      customerID,
			AccountType:     account,
			Timestamp:       at,
			Action:          models.ActionDeposit,
			AmountInPennies: amount,
		}
		if err := tx.AppendTransaction(ctx, entry); err != nil {
			return err
		}
		if err := l.credit(ctx, tx, &c, account, amount, entry.ID, at); err != nil {
			return err
		}

		state, counter, paid, err := l.interest.AfterDeposit(c.Account(account), amount, c.NumDepositsForInterest)
		if err != nil {
			return err
		}
		c.SetAccount(account, state)
		c.NumDepositsForInterest, interest = counter, paid

		return tx.UpdateCustomer(ctx, c)
	})
	if err != nil {
		return models.Customer{}, err
	}

	ev := newEvent(events.Deposited, c, account, amount)
	ev.InterestInPennies = int64(interest)
	l.publish(ctx, ev, at)
	return c, nil
}

// Withdraw debits amount from the account. A shortfall becomes overdraft
// with interest, up to the overdraft limit.
func (l *Ledger) Withdraw(ctx context.Context, customerID string, account models.AccountType, amount money.Cents) (c models.Customer, err error) {
	defer func() { l.finish("withdraw", customerID, err) }()

	if err := l.validate(account, amount); err != nil {
		return models.Customer{}, err
	}

	var at time.Time
	err = l.run(ctx, []string{customerID}, func(tx interfaces.LedgerTx) error {
		var err error
		if c, err = l.loadActive(ctx, tx, customerID); err != nil {
			return err
		}
		at = l.now()

		res, err := l.overdraft.Debit(c.Account(account), amount)
		if err != nil {
			return err
		}
		c.SetAccount(account, res.State)

		if err := tx.AppendTransaction(ctx, models.TransactionEntry{
			ID:                 uuid.NewString(),
			CustomerID:         customerID,
			AccountType:        account,
			Timestamp:          at,
			Action:             models.ActionWithdraw,
			AmountInPennies:    amount,
			SurchargeInPennies: res.Surcharge,
		}); err != nil {
			return err
		}
		return tx.UpdateCustomer(ctx, c)
	})
	if err != nil {
		return models.Customer{}, err
	}

	l.publish(ctx, newEvent(events.Withdrew, c, account, amount), at)
	return c, nil
}

// Dispute reverses the transaction numTransactionsAgo rows back in the
// account's history (1 is the most recent) and counts one fraud reversal.
func (l *Ledger) Dispute(ctx context.Context, customerID string, account models.AccountType, numTransactionsAgo int) (c models.Customer, err error) {
	defer func() { l.finish("dispute", customerID, err) }()

	if !account.Valid() {
		return models.Customer{}, fmt.Errorf("%w: %q", ErrInvalidAccountType, account)
	}
	if numTransactionsAgo < 1 {
		return models.Customer{}, fmt.Errorf("%w: %d transactions ago", ErrNoSuchTransaction, numTransactionsAgo)
	}

	var at time.Time
	var reversal models.TransactionEntry
	err = l.run(ctx, []string{customerID}, func(tx interfaces.LedgerTx) error {
		var err error
		if c, err = l.loadActive(ctx, tx, customerID); err != nil {
			return err
		}
		at = l.now()

		rows, err := tx.RecentTransactions(ctx, customerID, account, numTransactionsAgo)
		if err != nil {
			return err
		}
		if len(rows) < numTransactionsAgo {
			return fmt.Errorf("%w: %s has %d transactions, wanted %d ago", ErrNoSuchTransaction, account, len(rows), numTransactionsAgo)
		}
		target := rows[numTransactionsAgo-1]

		opposite, ok := target.Action.Opposite()
		if !ok {
			return fmt.Errorf("%w: %s", ErrTransactionNotReversible, target.Action)
		}
		reversal = models.TransactionEntry{
			ID:              uuid.NewString(),
			CustomerID:      customerID,
			AccountType:     account,
			Timestamp:       at,
			Action:          opposite,
			AmountInPennies: target.AmountInPennies,
		}

		if opposite == models.ActionWithdraw {
			reversal.SurchargeInPennies, err = l.reverseDeposit(ctx, tx, &c, target)
		} else {
			err = l.reverseWithdraw(ctx, tx, &c, target, reversal.ID, at)
		}
		if err != nil {
			return err
		}

		l.fraud.RecordDispute(&c)
		if err := tx.AppendTransaction(ctx, reversal); err != nil {
			return err
		}
		return tx.UpdateCustomer(ctx, c)
	})
	if err != nil {
		return models.Customer{}, err
	}

	ev := newEvent(events.Disputed, c, account, reversal.AmountInPennies)
	l.publish(ctx, ev, at)
	return c, nil
}

// reverseDeposit takes a deposit back out. The part of it that repaid
// overdraft is charged back as debt without a second round of interest.
// It returns the interest charged on any fresh shortfall.
func (l *Ledger) reverseDeposit(ctx context.Context, tx interfaces.LedgerTx, c *models.Customer, deposit models.TransactionEntry) (money.Cents, error) {
	account := deposit.AccountType

	var repaid money.Cents
	log, found, err := tx.OverdraftLogFor(ctx, c.ID, account, deposit.ID)
	if err != nil {
		return 0, err
	}
	if found {
		repaid = log.Repaid()
	}

	res, err := l.overdraft.Debit(c.Account(account), deposit.AmountInPennies-repaid)
	if err != nil {
		return 0, err
	}
	surcharge := res.Surcharge
	if repaid > 0 {
		if res, err = l.overdraft.DebitWithoutInterest(res.State, repaid); err != nil {
			return 0, err
		}
	}
	c.SetAccount(account, res.State)
	return surcharge, nil
}

// reverseWithdraw pays a withdrawal back in, together with the overdraft
// interest it charged.
func (l *Ledger) reverseWithdraw(ctx context.Context, tx interfaces.LedgerTx, c *models.Customer, withdrawal models.TransactionEntry, reversalID string, at time.Time) error {
	refund, err := money.Add(withdrawal.AmountInPennies, withdrawal.SurchargeInPennies)
	if err != nil {
		return err
	}
	return l.credit(ctx, tx, c, withdrawal.AccountType, refund, reversalID, at)
}
