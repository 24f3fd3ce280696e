package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/banking-api/internal/models"
)

type notificationsRepo struct{ pool *pgxpool.Pool }

func (r *notificationsRepo) Create(ctx context.Context, userID, message string, kind models.NotificationType) (models.Notification, error) {
	var n models.Notification
	err := r.pool.QueryRow(ctx,
		`INSERT INTO notifications(id, user_id, message, type)
		 VALUES($1,$2,$3,$4)
		 RETURNING id, user_id, message, type, read, created_at`,
		uuid.NewString(), userID, message, kind,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Read, &n.CreatedAt)
	return n, err
}

func (r *notificationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, message, type, read, created_at
		   FROM notifications
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead scopes by owner: a notification belonging to another user reads as
// not found.
func (r *notificationsRepo) MarkRead(ctx context.Context, id, userID string) (models.Notification, error) {
	var n models.Notification
	err := r.pool.QueryRow(ctx,
		`UPDATE notifications SET read = true
		  WHERE id=$1 AND user_id=$2
		  RETURNING id, user_id, message, type, read, created_at`,
		id, userID,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Read, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Notification{}, models.ErrNotificationNotFound
	}
	return n, err
}
