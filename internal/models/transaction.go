package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnDeposit    TransactionType = "deposit"
	TxnWithdrawal TransactionType = "withdrawal"
	TxnTransfer   TransactionType = "transfer"
)

// Transaction is an immutable ledger record. A transfer is recorded as a single
// row attributed to the source account, with ToAccountID set; the destination
// account's balance changes without a row of its own.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	ToAccountID *string         `json:"to_account_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description,omitempty"`
}
