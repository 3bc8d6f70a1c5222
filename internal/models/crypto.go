package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CryptoHolding is the amount of one cryptocurrency a customer owns.
type CryptoHolding struct {
	CustomerID   string
	CryptoName   string
	CryptoAmount decimal.Decimal
}

// CryptoHistoryEntry records one buy or sell.
type CryptoHistoryEntry struct {
	ID           string
	CustomerID   string
	Timestamp    time.Time
	Action       Action // ActionCryptoBuy or ActionCryptoSell
	CryptoName   string
	CryptoAmount decimal.Decimal
	PricePerUnit decimal.Decimal
}
