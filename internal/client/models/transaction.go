package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a wallet transaction.
type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionPurchase TransactionType = "purchase"
)

// Transaction is an immutable economic record: created exactly once per
// deposit or successful unlock, never mutated or deleted. Amount is signed:
// positive for deposits, negative for purchases.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   int64           `json:"timestamp"`
}

// NewDeposit builds a deposit transaction for a positive amount.
func NewDeposit(amount decimal.Decimal, description string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Type:        TransactionDeposit,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UnixMilli(),
	}
}

// NewPurchase builds a purchase transaction. The recorded amount is the
// negation of price.
func NewPurchase(price decimal.Decimal, description string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Type:        TransactionPurchase,
		Amount:      price.Neg(),
		Description: description,
		Timestamp:   time.Now().UnixMilli(),
	}
}
