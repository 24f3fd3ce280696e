package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/ledgercore/banking-api/internal/repository"
)

type Repositories struct {
	Users         repo.Users
	Accounts      repo.Accounts
	Ledger        repo.Ledger
	Notifications repo.Notifications
	AgentLogs     repo.AgentLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         &usersRepo{pool},
		Accounts:      &accountsRepo{pool},
		Ledger:        &ledgerRepo{pool},
		Notifications: &notificationsRepo{pool},
		AgentLogs:     &agentLogsRepo{pool},
	}
}
