package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
	"github.com/shopspring/decimal"
)

type ledgerRepo struct{ pool *pgxpool.Pool }

// WithTx runs fn inside one pgx transaction. Read committed plus the FOR UPDATE
// row locks taken by AccountForUpdate is enough to serialize conflicting balance
// mutations; serializable isolation (and its retry loop) is not needed.
func (r *ledgerRepo) WithTx(ctx context.Context, fn func(repo.LedgerTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	if err := fn(&ledgerTx{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, type, amount, to_account_id, timestamp, description
		   FROM transactions
		  WHERE account_id=$1
		  ORDER BY timestamp DESC, id DESC
		  LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *ledgerRepo) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.account_id, t.type, t.amount, t.to_account_id, t.timestamp, t.description
		   FROM transactions t
		   JOIN accounts a ON t.account_id = a.id
		  WHERE a.user_id=$1 AND t.timestamp > $2
		  ORDER BY t.timestamp DESC, t.id DESC`,
		userID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *ledgerRepo) LargeWithdrawalsSince(ctx context.Context, minAmount decimal.Decimal, since time.Time) ([]repo.WithdrawalAlert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.account_id, a.user_id, t.amount, t.timestamp
		   FROM transactions t
		   JOIN accounts a ON t.account_id = a.id
		  WHERE t.type='withdrawal' AND t.amount > $1 AND t.timestamp > $2
		  ORDER BY t.timestamp DESC`,
		minAmount, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repo.WithdrawalAlert
	for rows.Next() {
		var w repo.WithdrawalAlert
		if err := rows.Scan(&w.AccountID, &w.UserID, &w.Amount, &w.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *ledgerRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type ledgerTx struct{ tx pgx.Tx }

func (t *ledgerTx) AccountForUpdate(ctx context.Context, id string) (models.Account, error) {
	var a models.Account
	err := t.tx.QueryRow(ctx,
		`SELECT id, user_id, account_type, balance, created_at
		   FROM accounts
		  WHERE id=$1
		  FOR UPDATE`,
		id,
	).Scan(&a.ID, &a.UserID, &a.AccountType, &a.Balance, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, err
}

func (t *ledgerTx) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE accounts SET balance = balance + $2 WHERE id=$1`,
		id, delta,
	)
	return err
}

func (t *ledgerTx) Insert(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	err := t.tx.QueryRow(ctx,
		`INSERT INTO transactions(id, account_id, type, amount, to_account_id, description)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, account_id, type, amount, to_account_id, timestamp, description`,
		txn.ID, txn.AccountID, txn.Type, txn.Amount, txn.ToAccountID, txn.Description,
	).Scan(&txn.ID, &txn.AccountID, &txn.Type, &txn.Amount, &txn.ToAccountID, &txn.Timestamp, &txn.Description)
	return txn, err
}

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Type, &txn.Amount, &txn.ToAccountID, &txn.Timestamp, &txn.Description); err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}
