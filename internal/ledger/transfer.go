package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
	"github.com/sheikh-saqib/bank-account-simulator/internal/models/events"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
)

// TransferRequest moves Amount from one account to another. From and To may
// be the same customer as long as the account types differ.
type TransferRequest struct {
	From        string
	FromAccount models.AccountType
	To          string
	ToAccount   models.AccountType
	Amount      money.Cents
}

type TransferResult struct {
	Log       models.TransferLog
	Sender    models.Customer
	Recipient models.Customer
}

// Transfer debits the sender's main balance, never into overdraft, and
// credits the recipient, paying down their overdraft first.
func (l *Ledger) Transfer(ctx context.Context, req TransferRequest) (res TransferResult, err error) {
	defer func() { l.finish("transfer", req.From, err) }()

	if !req.FromAccount.Valid() || !req.ToAccount.Valid() {
		return TransferResult{}, fmt.Errorf("%w: %q to %q", ErrInvalidAccountType, req.FromAccount, req.ToAccount)
	}
	if err := l.checkAmount(req.Amount); err != nil {
		return TransferResult{}, err
	}
	if req.From == req.To && req.FromAccount == req.ToAccount {
		return TransferResult{}, fmt.Errorf("%w: %s %s", ErrSameAccount, req.From, req.FromAccount)
	}

	var at time.Time
	err = l.run(ctx, []string{req.From, req.To}, func(tx interfaces.LedgerTx) error {
		sender, err := l.loadActive(ctx, tx, req.From)
		if err != nil {
			return err
		}
		at = l.now()

		debited, err := l.overdraft.DebitCash(sender.Account(req.FromAccount), req.Amount)
		if err != nil {
			return err
		}
		sender.SetAccount(req.FromAccount, debited)

		recipient := &sender
		if req.To != req.From {
			other, err := tx.GetCustomer(ctx, req.To)
			if err != nil {
				return err
			}
			recipient = &other
		}

		res.Log = models.TransferLog{
			ID:              uuid.NewString(),
			TransferFrom:    req.From,
			TransferTo:      req.To,
			FromAccountType: req.FromAccount,
			ToAccountType:   req.ToAccount,
			Timestamp:       at,
			AmountInPennies: req.Amount,
		}
		if err := l.credit(ctx, tx, recipient, req.ToAccount, req.Amount, res.Log.ID, at); err != nil {
			return err
		}
		if err := tx.AppendTransferLog(ctx, res.Log); err != nil {
			return err
		}

		if err := tx.UpdateCustomer(ctx, sender); err != nil {
			return err
		}
		if recipient != &sender {
			if err := tx.UpdateCustomer(ctx, *recipient); err != nil {
				return err
			}
		}
		res.Sender, res.Recipient = sender, *recipient
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}

	ev := newEvent(events.Transferred, res.Sender, req.FromAccount, req.Amount)
	ev.Counterparty = req.To
	ev.CounterpartyAccount = string(req.ToAccount)
	l.publish(ctx, ev, at)
	return res, nil
}
