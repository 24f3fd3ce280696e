package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/banking-api/internal/models"
)

type agentLogsRepo struct{ pool *pgxpool.Pool }

func (r *agentLogsRepo) Create(ctx context.Context, l models.AgentLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agent_logs(id, agent_type, action, details) VALUES($1,$2,$3,$4)`,
		l.ID, l.AgentType, l.Action, l.Details,
	)
	return err
}

func (r *agentLogsRepo) List(ctx context.Context, limit int) ([]models.AgentLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, agent_type, action, details, timestamp
		   FROM agent_logs
		  ORDER BY timestamp DESC
		  LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AgentLog
	for rows.Next() {
		var l models.AgentLog
		if err := rows.Scan(&l.ID, &l.AgentType, &l.Action, &l.Details, &l.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *agentLogsRepo) CountErrorsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM agent_logs
		  WHERE timestamp > $1 AND details->>'error' IS NOT NULL`,
		since,
	).Scan(&n)
	return n, err
}
