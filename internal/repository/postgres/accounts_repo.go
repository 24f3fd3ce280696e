package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/banking-api/internal/models"
	"github.com/shopspring/decimal"
)

type accountsRepo struct{ pool *pgxpool.Pool }

func (r *accountsRepo) Create(ctx context.Context, userID string, accountType models.AccountType) (models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts(id, user_id, account_type, balance)
		 VALUES($1, $2, $3, 0.00)
		 RETURNING id, user_id, account_type, balance, created_at`,
		uuid.NewString(), userID, accountType,
	).Scan(&a.ID, &a.UserID, &a.AccountType, &a.Balance, &a.CreatedAt)
	return a, err
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, account_type, balance, created_at FROM accounts WHERE id=$1`, id,
	).Scan(&a.ID, &a.UserID, &a.AccountType, &a.Balance, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, err
}

func (r *accountsRepo) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, account_type, balance, created_at
		   FROM accounts
		  WHERE user_id=$1
		  ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountsRepo) LowBalance(ctx context.Context, threshold decimal.Decimal) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, account_type, balance, created_at
		   FROM accounts
		  WHERE balance > 0 AND balance < $1`,
		threshold,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]models.Account, error) {
	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.AccountType, &a.Balance, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
