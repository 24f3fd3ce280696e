package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

func (t AccountType) Valid() bool {
	return t == AccountChecking || t == AccountSavings
}

// Account balance is mutated only inside a ledger unit of work.
type Account struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountType AccountType     `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}
