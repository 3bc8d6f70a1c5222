package models

// Customer is the mutable ledger row for one customer ID.
type Customer struct {
	ID                     string
	Checking               AccountState
	Savings                AccountState
	NumFraudReversals      int
	NumDepositsForInterest int
}

// Account returns the state of the given account type.
func (c Customer) Account(t AccountType) AccountState {
	if t == Savings {
		return c.Savings
	}
	return c.Checking
}

// SetAccount replaces the state of the given account type.
func (c *Customer) SetAccount(t AccountType, s AccountState) {
	if t == Savings {
		c.Savings = s
		return
	}
	c.Checking = s
}
