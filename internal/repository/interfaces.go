package repository

import (
	"context"
	"time"

	"github.com/ledgercore/banking-api/internal/models"
	"github.com/shopspring/decimal"
)

type Users interface {
	Create(ctx context.Context, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type Accounts interface {
	Create(ctx context.Context, userID string, accountType models.AccountType) (models.Account, error)
	GetByID(ctx context.Context, id string) (models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)

	// LowBalance returns accounts with 0 < balance < threshold.
	LowBalance(ctx context.Context, threshold decimal.Decimal) ([]models.Account, error)
}

// Ledger is the transactional boundary of the balance-mutating core. WithTx runs
// fn inside one unit of work: every read and write made through the LedgerTx is
// committed if fn returns nil and rolled back as a whole otherwise.
type Ledger interface {
	WithTx(ctx context.Context, fn func(LedgerTx) error) error

	// ListByAccount returns transactions newest-first, ordered by timestamp with
	// id as the tie-break, bounded to limit rows.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]models.Transaction, error)

	// ListByUserSince returns all transactions on the user's accounts after since,
	// newest-first.
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]models.Transaction, error)

	// LargeWithdrawalsSince returns withdrawals above minAmount after since,
	// newest-first, with the owning user resolved.
	LargeWithdrawalsSince(ctx context.Context, minAmount decimal.Decimal, since time.Time) ([]WithdrawalAlert, error)

	Ping(ctx context.Context) error
}

// LedgerTx is the set of operations available inside one unit of work. An
// account read through AccountForUpdate stays locked against concurrent
// balance mutations until the unit of work commits or rolls back.
type LedgerTx interface {
	AccountForUpdate(ctx context.Context, id string) (models.Account, error)
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error
	Insert(ctx context.Context, txn models.Transaction) (models.Transaction, error)
}

type WithdrawalAlert struct {
	AccountID string
	UserID    string
	Amount    decimal.Decimal
	Timestamp time.Time
}

type Notifications interface {
	Create(ctx context.Context, userID, message string, kind models.NotificationType) (models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (models.Notification, error)
}

type AgentLogs interface {
	Create(ctx context.Context, l models.AgentLog) error
	List(ctx context.Context, limit int) ([]models.AgentLog, error)
	CountErrorsSince(ctx context.Context, since time.Time) (int, error)
}
