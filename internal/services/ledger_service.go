package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledgercore/banking-api/internal/metrics"
	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
	"github.com/ledgercore/banking-api/internal/worker"
	"github.com/shopspring/decimal"
)

// Notifier delivers a best-effort user message. Failures are the sink's
// problem; the ledger never sees them.
type Notifier interface {
	Notify(ctx context.Context, userID, message string, kind models.NotificationType)
}

// LedgerService performs the balance-mutating operations. Each operation is one
// unit of work against the store: the balance check, the balance update and the
// transaction insert commit together or not at all. Notifications go out after
// commit via the worker pool and cannot affect the result.
type LedgerService struct {
	ledger   repo.Ledger
	accounts repo.Accounts
	notifier Notifier
	wp       *worker.Pool
}

func NewLedgerService(l repo.Ledger, a repo.Accounts, n Notifier, wp *worker.Pool) *LedgerService {
	return &LedgerService{ledger: l, accounts: a, notifier: n, wp: wp}
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

func (s *LedgerService) Deposit(ctx context.Context, accountID, userID string, amount decimal.Decimal, description string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, models.ErrInvalidAmount
	}

	var out models.Transaction
	err := s.ledger.WithTx(ctx, func(tx repo.LedgerTx) error {
		acct, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if acct.UserID != userID {
			return models.ErrUnauthorized
		}
		if err := tx.AdjustBalance(ctx, accountID, amount); err != nil {
			return err
		}
		out, err = tx.Insert(ctx, models.Transaction{
			AccountID:   accountID,
			Type:        models.TxnDeposit,
			Amount:      amount,
			Description: orDefault(description, "Deposit"),
		})
		return err
	})
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return models.Transaction{}, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(models.TxnDeposit)).Inc()
	slog.Info("deposit completed", "account_id", accountID, "amount", amount)
	s.notifyOwner(userID, fmt.Sprintf("Deposit of $%s completed successfully", amount.StringFixed(2)))
	return out, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, accountID, userID string, amount decimal.Decimal, description string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, models.ErrInvalidAmount
	}

	var out models.Transaction
	err := s.ledger.WithTx(ctx, func(tx repo.LedgerTx) error {
		acct, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if acct.UserID != userID {
			return models.ErrUnauthorized
		}
		// The row lock from AccountForUpdate makes the check-then-decrement
		// atomic against concurrent withdrawals.
		if acct.Balance.LessThan(amount) {
			return models.ErrInsufficientFunds
		}
		if err := tx.AdjustBalance(ctx, accountID, amount.Neg()); err != nil {
			return err
		}
		out, err = tx.Insert(ctx, models.Transaction{
			AccountID:   accountID,
			Type:        models.TxnWithdrawal,
			Amount:      amount,
			Description: orDefault(description, "Withdrawal"),
		})
		return err
	})
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return models.Transaction{}, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(models.TxnWithdrawal)).Inc()
	slog.Info("withdrawal completed", "account_id", accountID, "amount", amount)
	s.notifyOwner(userID, fmt.Sprintf("Withdrawal of $%s completed successfully", amount.StringFixed(2)))
	return out, nil
}

// Transfer moves amount between two accounts. The requester must own the
// source; the destination may belong to anyone. One transaction row is
// recorded, attributed to the source, carrying the destination id.
func (s *LedgerService) Transfer(ctx context.Context, fromAccountID, toAccountID, userID string, amount decimal.Decimal, description string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, models.ErrInvalidAmount
	}
	if fromAccountID == toAccountID {
		return models.Transaction{}, models.ErrSameAccountTransfer
	}

	var out models.Transaction
	err := s.ledger.WithTx(ctx, func(tx repo.LedgerTx) error {
		// Lock both rows in ascending id order so opposing transfers between
		// the same pair of accounts cannot deadlock.
		first, second := fromAccountID, toAccountID
		if second < first {
			first, second = second, first
		}
		locked := map[string]models.Account{}
		for _, id := range []string{first, second} {
			acct, err := tx.AccountForUpdate(ctx, id)
			if err != nil {
				if errors.Is(err, models.ErrAccountNotFound) {
					if id == fromAccountID {
						return models.ErrSourceAccountNotFound
					}
					return models.ErrDestinationAccountNotFound
				}
				return err
			}
			locked[id] = acct
		}

		src := locked[fromAccountID]
		if src.UserID != userID {
			return models.ErrUnauthorized
		}
		if src.Balance.LessThan(amount) {
			return models.ErrInsufficientFunds
		}

		if err := tx.AdjustBalance(ctx, fromAccountID, amount.Neg()); err != nil {
			return err
		}
		if err := tx.AdjustBalance(ctx, toAccountID, amount); err != nil {
			return err
		}
		var err error
		out, err = tx.Insert(ctx, models.Transaction{
			AccountID:   fromAccountID,
			Type:        models.TxnTransfer,
			Amount:      amount,
			ToAccountID: &toAccountID,
			Description: orDefault(description, "Transfer"),
		})
		return err
	})
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return models.Transaction{}, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(models.TxnTransfer)).Inc()
	slog.Info("transfer completed", "from_account_id", fromAccountID, "to_account_id", toAccountID, "amount", amount)
	s.notifyOwner(userID, fmt.Sprintf("Transfer of $%s to account %s completed successfully", amount.StringFixed(2), toAccountID))
	return out, nil
}

// History returns the account's transactions newest-first, timestamp then id
// as the tie-break. Only the owner may read an account's history.
func (s *LedgerService) History(ctx context.Context, accountID, userID string, limit int) ([]models.Transaction, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.UserID != userID {
		return nil, models.ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.ledger.ListByAccount(ctx, accountID, limit)
}

func (s *LedgerService) notifyOwner(userID, message string) {
	s.wp.Submit(func() {
		s.notifier.Notify(context.Background(), userID, message, models.NotifyTransaction)
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
