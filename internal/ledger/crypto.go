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
	"github.com/shopspring/decimal"
)

// CryptoReceipt describes a completed trade. Crypto is always settled
// against the checking account.
type CryptoReceipt struct {
	Customer     models.Customer
	CryptoName   string
	CryptoAmount decimal.Decimal
	PricePerUnit decimal.Decimal
	Cash         money.Cents
	Holding      decimal.Decimal // after the trade
}

// BuyCrypto pays for amount units of cryptoName out of the checking main
// balance. Purchases never use overdraft.
func (l *Ledger) BuyCrypto(ctx context.Context, customerID, cryptoName string, amount decimal.Decimal) (CryptoReceipt, error) {
	return l.trade(ctx, models.ActionCryptoBuy, customerID, cryptoName, amount)
}

// SellCrypto sells amount units of cryptoName and credits the proceeds to
// checking, paying down any overdraft first.
func (l *Ledger) SellCrypto(ctx context.Context, customerID, cryptoName string, amount decimal.Decimal) (CryptoReceipt, error) {
	return l.trade(ctx, models.ActionCryptoSell, customerID, cryptoName, amount)
}

func (l *Ledger) trade(ctx context.Context, action models.Action, customerID, cryptoName string, amount decimal.Decimal) (r CryptoReceipt, err error) {
	defer func() { l.finish(string(action), customerID, err) }()

	name := strings.ToUpper(strings.TrimSpace(cryptoName))
	if !l.policy.SupportsCrypto(name) {
		return CryptoReceipt{}, fmt.Errorf("%w: %q", ErrUnsupportedCrypto, cryptoName)
	}
	if !amount.IsPositive() {
		return CryptoReceipt{}, fmt.Errorf("%w: got %s %s", ErrInvalidAmount, amount, name)
	}

	// Frozen customers are turned away before the price lookup.
	current, err := l.store.GetCustomer(ctx, customerID)
	if err != nil {
		return CryptoReceipt{}, classify(err)
	}
	if err := l.fraud.CheckNotFrozen(current); err != nil {
		return CryptoReceipt{}, err
	}

	price, err := l.currentPrice(ctx, name)
	if err != nil {
		return CryptoReceipt{}, err
	}
	cash, err := money.ValueOf(amount, price)
	if err != nil {
		return CryptoReceipt{}, err
	}
	if cash <= 0 {
		return CryptoReceipt{}, fmt.Errorf("%w: %s %s is worth less than a cent", ErrInvalidAmount, amount, name)
	}
	if err := l.checkAmount(cash); err != nil {
		return CryptoReceipt{}, err
	}

	var at time.Time
	err = l.run(ctx, []string{customerID}, func(tx interfaces.LedgerTx) error {
		c, err := l.loadActive(ctx, tx, customerID)
		if err != nil {
			return err
		}
		at = l.now()

		holding, _, err := tx.GetCryptoHolding(ctx, customerID, name)
		if err != nil {
			return err
		}

		entry := models.TransactionEntry{
			ID:              uuid.NewString(),
			CustomerID:      customerID,
			AccountType:     models.Checking,
			Timestamp:       at,
			Action:          action,
			AmountInPennies: cash,
		}

		if action == models.ActionCryptoBuy {
			if c.Checking, err = l.overdraft.DebitCash(c.Checking, cash); err != nil {
				return err
			}
			holding = holding.Add(amount)
		} else {
			if holding.LessThan(amount) {
				return fmt.Errorf("%w: have %s %s, selling %s", ErrInsufficientCryptoHolding, holding, name, amount)
			}
			holding = holding.Sub(amount)
			if err := l.credit(ctx, tx, &c, models.Checking, cash, entry.ID, at); err != nil {
				return err
			}
		}

		if err := tx.SetCryptoHolding(ctx, models.CryptoHolding{CustomerID: customerID, CryptoName: name, CryptoAmount: holding}); err != nil {
			return err
		}
		if err := tx.AppendCryptoHistory(ctx, models.CryptoHistoryEntry{
			ID:           uuid.NewString(),
			CustomerID:   customerID,
			Timestamp:    at,
			Action:       action,
			CryptoName:   name,
			CryptoAmount: amount,
			PricePerUnit: price,
		}); err != nil {
			return err
		}
		if err := tx.AppendTransaction(ctx, entry); err != nil {
			return err
		}
		if err := tx.UpdateCustomer(ctx, c); err != nil {
			return err
		}

		r = CryptoReceipt{
			Customer:     c,
			CryptoName:   name,
			CryptoAmount: amount,
			PricePerUnit: price,
			Cash:         cash,
			Holding:      holding,
		}
		return nil
	})
	if err != nil {
		return CryptoReceipt{}, err
	}

	evType := events.CryptoBought
	if action == models.ActionCryptoSell {
		evType = events.CryptoSold
	}
	ev := newEvent(evType, r.Customer, models.Checking, cash)
	ev.CryptoName = name
	ev.CryptoAmount = &r.CryptoAmount
	ev.CryptoPrice = &r.PricePerUnit
	l.publish(ctx, ev, at)
	return r, nil
}

// currentPrice asks the price client for a quote, bounded by the price timeout.
func (l *Ledger) currentPrice(ctx context.Context, name string) (decimal.Decimal, error) {
	if l.prices == nil {
		return decimal.Zero, fmt.Errorf("%w: no price source", ErrInvalidCryptoPrice)
	}

	ctx, cancel := context.WithTimeout(ctx, l.priceTimeout)
	defer cancel()

	price, err := l.prices.CurrentPrice(ctx, name)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidCryptoPrice, name, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s quoted at %s", ErrInvalidCryptoPrice, name, price)
	}
	return price, nil
}
