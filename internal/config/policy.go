package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/sheikh-saqib/bank-account-simulator/internal/policy"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// policyFile mirrors policy.Config. Absent keys keep the default value.
// Rates are strings so they are parsed exactly.
type policyFile struct {
	OverdraftInterestRate      *string  `yaml:"overdraft_interest_rate"`
	OverdraftLimitCents        *int64   `yaml:"overdraft_limit_cents"`
	MaxDisputes                *int     `yaml:"max_disputes"`
	MaxAmountCents             *int64   `yaml:"max_amount_cents"`
	DepositsForInterest        *int     `yaml:"deposits_for_interest"`
	MinDepositForInterestCents *int64   `yaml:"min_deposit_for_interest_cents"`
	BalanceInterestRate        *string  `yaml:"balance_interest_rate"`
	SupportedCryptos           []string `yaml:"supported_cryptos"`
}

// LoadPolicy returns policy.Default() overlaid with the YAML file at path.
// An empty path returns the defaults.
func LoadPolicy(path string) (policy.Config, error) {
	cfg := policy.Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading policy %s: %w", path, err)
	}
	return ParsePolicy(data, cfg)
}

// ParsePolicy overlays the YAML document in data onto base. Unknown keys are errors.
func ParsePolicy(data []byte, base policy.Config) (policy.Config, error) {
	var f policyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing policy: %w", err)
	}

	cfg := base
	if f.OverdraftInterestRate != nil {
		rate, err := decimal.NewFromString(*f.OverdraftInterestRate)
		if err != nil {
			return base, fmt.Errorf("overdraft_interest_rate: %w", err)
		}
		cfg.OverdraftInterestRate = rate
	}
	if f.OverdraftLimitCents != nil {
		cfg.OverdraftLimit = money.Cents(*f.OverdraftLimitCents)
	}
	if f.MaxDisputes != nil {
		cfg.MaxDisputes = *f.MaxDisputes
	}
	if f.MaxAmountCents != nil {
		cfg.MaxAmount = money.Cents(*f.MaxAmountCents)
	}
	if f.DepositsForInterest != nil {
		cfg.DepositsForInterest = *f.DepositsForInterest
	}
	if f.MinDepositForInterestCents != nil {
		cfg.MinDepositForInterest = money.Cents(*f.MinDepositForInterestCents)
	}
	if f.BalanceInterestRate != nil {
		rate, err := decimal.NewFromString(*f.BalanceInterestRate)
		if err != nil {
			return base, fmt.Errorf("balance_interest_rate: %w", err)
		}
		cfg.BalanceInterestRate = rate
	}
	if f.SupportedCryptos != nil {
		cfg.SupportedCryptos = f.SupportedCryptos
	}

	if err := validatePolicy(cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

func validatePolicy(cfg policy.Config) error {
	one := decimal.NewFromInt(1)
	switch {
	case cfg.OverdraftInterestRate.LessThan(one):
		return fmt.Errorf("overdraft_interest_rate must be at least 1, got %s", cfg.OverdraftInterestRate)
	case cfg.BalanceInterestRate.LessThan(one):
		return fmt.Errorf("balance_interest_rate must be at least 1, got %s", cfg.BalanceInterestRate)
	case cfg.OverdraftLimit < 0:
		return fmt.Errorf("overdraft_limit_cents must not be negative, got %d", cfg.OverdraftLimit)
	case cfg.MaxDisputes < 1:
		return fmt.Errorf("max_disputes must be at least 1, got %d", cfg.MaxDisputes)
	case cfg.MaxAmount < 1:
		return fmt.Errorf("max_amount_cents must be positive, got %d", cfg.MaxAmount)
	case cfg.DepositsForInterest < 0:
		return fmt.Errorf("deposits_for_interest must not be negative, got %d", cfg.DepositsForInterest)
	case cfg.MinDepositForInterest < 0:
		return fmt.Errorf("min_deposit_for_interest_cents must not be negative, got %d", cfg.MinDepositForInterest)
	}
	return nil
}
