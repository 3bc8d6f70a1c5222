package policy

import (
	"strings"

	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/shopspring/decimal"
)

// Config holds every threshold the ledger policies consult.
type Config struct {
	// OverdraftInterestRate multiplies a fresh shortfall once, when it first becomes debt.
	OverdraftInterestRate decimal.Decimal
	// OverdraftLimit caps the overdraft balance, interest included.
	OverdraftLimit money.Cents
	// MaxDisputes freezes a customer once NumFraudReversals reaches it.
	MaxDisputes int

	// MaxAmount is the largest amount a single operation may move.
	MaxAmount money.Cents

	// DepositsForInterest qualifying deposits pay BalanceInterestRate on the
	// main balance. Zero disables balance interest.
	DepositsForInterest   int
	MinDepositForInterest money.Cents
	BalanceInterestRate   decimal.Decimal

	SupportedCryptos []string
}

// Default returns the thresholds the bank has always run with.
func Default() Config {
	return Config{
		OverdraftInterestRate: decimal.RequireFromString("1.02"),
		OverdraftLimit:        100000,
		MaxDisputes:           2,
		MaxAmount:             1_000_000_000_000,
		DepositsForInterest:   5,
		MinDepositForInterest: 2000,
		BalanceInterestRate:   decimal.RequireFromString("1.015"),
		SupportedCryptos:      []string{"ETH", "SOL"},
	}
}

// SupportsCrypto reports whether name is tradable. Names are compared upper-cased.
func (c Config) SupportsCrypto(name string) bool {
	name = strings.ToUpper(name)
	for _, s := range c.SupportedCryptos {
		if strings.ToUpper(s) == name {
			return true
		}
	}
	return false
}

// Overdraft returns the overdraft policy for this configuration.
func (c Config) Overdraft() Overdraft {
	return Overdraft{rate: c.OverdraftInterestRate, limit: c.OverdraftLimit}
}

// Fraud returns the dispute-count gate for this configuration.
func (c Config) Fraud() Fraud {
	return Fraud{maxDisputes: c.MaxDisputes}
}

// Interest returns the deposit interest policy for this configuration.
func (c Config) Interest() Interest {
	return Interest{every: c.DepositsForInterest, minDeposit: c.MinDepositForInterest, rate: c.BalanceInterestRate}
}
