package ledger

import (
	"errors"

	interfaces "github.com/sheikh-saqib/bank-account-simulator/internal/interfaces"
	"github.com/sheikh-saqib/bank-account-simulator/internal/money"
	"github.com/sheikh-saqib/bank-account-simulator/internal/policy"
)

// Rejections. A call that returns one of these changed nothing.
var (
	ErrAccountFrozen          = policy.ErrAccountFrozen
	ErrOverdraftLimitExceeded = policy.ErrOverdraftLimitExceeded
	ErrInsufficientFunds      = policy.ErrInsufficientFunds
	ErrCustomerNotFound       = interfaces.ErrCustomerNotFound
	ErrCustomerExists         = interfaces.ErrCustomerExists
	ErrAmountOutOfRange       = money.ErrOutOfRange

	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrInvalidCryptoPrice        = errors.New("crypto price unavailable or not positive")
	ErrInsufficientCryptoHolding = errors.New("insufficient crypto holding")
	ErrNoSuchTransaction         = errors.New("no such transaction")
	ErrInvalidAccountType        = errors.New("account type must be checking or savings")
	ErrSameAccount               = errors.New("cannot transfer to the same account")
	ErrTransactionNotReversible  = errors.New("transaction cannot be disputed")
	ErrUnsupportedCrypto         = errors.New("unsupported cryptocurrency")
	ErrInvalidCustomerID         = errors.New("customer ID must not be empty")
)

// ErrStoreUnavailable wraps every failure of the data store that is not a rejection.
var ErrStoreUnavailable = errors.New("ledger store unavailable")

var rejections = []error{
	ErrAccountFrozen,
	ErrOverdraftLimitExceeded,
	ErrInsufficientFunds,
	ErrCustomerNotFound,
	ErrCustomerExists,
	ErrInvalidAmount,
	ErrInvalidCryptoPrice,
	ErrInsufficientCryptoHolding,
	ErrNoSuchTransaction,
	ErrInvalidAccountType,
	ErrSameAccount,
	ErrTransactionNotReversible,
	ErrUnsupportedCrypto,
	ErrInvalidCustomerID,
	ErrAmountOutOfRange,
}

// IsRejection reports whether err is a business rule rejection rather than an infrastructure failure.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
