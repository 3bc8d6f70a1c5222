package policy

import (
	"fmt"

	"github.com/sheikh-saqib/bank-account-simulator/internal/models"
)

// Fraud gates mutating operations on the customer's dispute count.
type Fraud struct {
	maxDisputes int
}

func (f Fraud) IsFrozen(c models.Customer) bool {
	return c.NumFraudReversals >= f.maxDisputes
}

// CheckNotFrozen returns ErrAccountFrozen once the customer reached the dispute limit.
func (f Fraud) CheckNotFrozen(c models.Customer) error {
	if f.IsFrozen(c) {
		return fmt.Errorf("%w (customer %s, %d of %d)", ErrAccountFrozen, c.ID, c.NumFraudReversals, f.maxDisputes)
	}
	return nil
}

// RecordDispute counts one completed reversal. Checking and savings share the counter.
func (f Fraud) RecordDispute(c *models.Customer) {
	c.NumFraudReversals++
}
