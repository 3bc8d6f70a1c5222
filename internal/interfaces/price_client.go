package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceClient quotes the current USD price of one unit of a cryptocurrency.
type PriceClient interface {
	CurrentPrice(ctx context.Context, cryptoName string) (decimal.Decimal, error)
}
