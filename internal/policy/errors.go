package policy

import "errors"

var (
	// ErrOverdraftLimitExceeded means the debit would push overdraft debt past the ceiling.
	ErrOverdraftLimitExceeded = errors.New("overdraft limit exceeded")

	// ErrInsufficientFunds means a debit that may not use overdraft exceeds the main balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountFrozen means the customer has used up their disputes.
	ErrAccountFrozen = errors.New("account frozen: too many disputed transactions")
)
