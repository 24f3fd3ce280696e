// Package memory implements the repository interfaces over mutex-guarded maps.
// It backs the test suite; the semantics mirror the postgres package, including
// full rollback of a failed ledger unit of work.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu            sync.Mutex
	users         map[string]models.User
	accounts      map[string]models.Account
	transactions  []models.Transaction
	notifications map[string]models.Notification
	agentLogs     []models.AgentLog
}

func New() *Store {
	return &Store{
		users:         map[string]models.User{},
		accounts:      map[string]models.Account{},
		notifications: map[string]models.Notification{},
	}
}

func (s *Store) Users() repo.Users                 { return &usersRepo{s} }
func (s *Store) Accounts() repo.Accounts           { return &accountsRepo{s} }
func (s *Store) Ledger() repo.Ledger               { return &ledgerRepo{s} }
func (s *Store) Notifications() repo.Notifications { return &notificationsRepo{s} }
func (s *Store) AgentLogs() repo.AgentLogs         { return &agentLogsRepo{s} }

// ---------------- users ----------------

type usersRepo struct{ s *Store }

func (r *usersRepo) Create(_ context.Context, email, passwordHash string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := models.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.s.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrUserNotFound
}

func (r *usersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	for aid, a := range r.s.accounts {
		if a.UserID == id {
			delete(r.s.accounts, aid)
		}
	}
	return nil
}

// ---------------- accounts ----------------

type accountsRepo struct{ s *Store }

func (r *accountsRepo) Create(_ context.Context, userID string, accountType models.AccountType) (models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := models.Account{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountType: accountType,
		Balance:     decimal.Zero,
		CreatedAt:   time.Now(),
	}
	r.s.accounts[a.ID] = a
	return a, nil
}

func (r *accountsRepo) GetByID(_ context.Context, id string) (models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, nil
}

func (r *accountsRepo) ListByUser(_ context.Context, userID string) ([]models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Account
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *accountsRepo) LowBalance(_ context.Context, threshold decimal.Decimal) ([]models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Account
	for _, a := range r.s.accounts {
		if a.Balance.IsPositive() && a.Balance.LessThan(threshold) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ---------------- ledger ----------------

type ledgerRepo struct{ s *Store }

// WithTx holds the store lock for the whole unit of work, so concurrent units
// are fully serialized. Account and transaction state is snapshotted up front
// and restored when fn fails, matching the postgres rollback behavior.
func (r *ledgerRepo) WithTx(_ context.Context, fn func(repo.LedgerTx) error) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string]models.Account, len(s.accounts))
	for k, v := range s.accounts {
		snap[k] = v
	}
	nTxns := len(s.transactions)

	if err := fn(&ledgerTx{s}); err != nil {
		s.accounts = snap
		s.transactions = s.transactions[:nTxns]
		return err
	}
	return nil
}

func (r *ledgerRepo) ListByAccount(_ context.Context, accountID string, limit int) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Walk backwards so equal timestamps come out in reverse insertion order,
	// then a stable sort applies the timestamp ordering on top.
	var out []models.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		if r.s.transactions[i].AccountID == accountID {
			out = append(out, r.s.transactions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ledgerRepo) ListByUserSince(_ context.Context, userID string, since time.Time) ([]models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		txn := r.s.transactions[i]
		a, ok := r.s.accounts[txn.AccountID]
		if ok && a.UserID == userID && txn.Timestamp.After(since) {
			out = append(out, txn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *ledgerRepo) LargeWithdrawalsSince(_ context.Context, minAmount decimal.Decimal, since time.Time) ([]repo.WithdrawalAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repo.WithdrawalAlert
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		txn := r.s.transactions[i]
		if txn.Type != models.TxnWithdrawal || !txn.Amount.GreaterThan(minAmount) || !txn.Timestamp.After(since) {
			continue
		}
		a, ok := r.s.accounts[txn.AccountID]
		if !ok {
			continue
		}
		out = append(out, repo.WithdrawalAlert{
			AccountID: txn.AccountID,
			UserID:    a.UserID,
			Amount:    txn.Amount,
			Timestamp: txn.Timestamp,
		})
	}
	return out, nil
}

func (r *ledgerRepo) Ping(context.Context) error { return nil }

// ledgerTx runs under the store lock held by WithTx.
type ledgerTx struct{ s *Store }

func (t *ledgerTx) AccountForUpdate(_ context.Context, id string) (models.Account, error) {
	a, ok := t.s.accounts[id]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, nil
}

func (t *ledgerTx) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) error {
	a, ok := t.s.accounts[id]
	if !ok {
		return models.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	t.s.accounts[id] = a
	return nil
}

func (t *ledgerTx) Insert(_ context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	txn.Timestamp = time.Now()
	t.s.transactions = append(t.s.transactions, txn)
	return txn, nil
}

// ---------------- notifications ----------------

type notificationsRepo struct{ s *Store }

func (r *notificationsRepo) Create(_ context.Context, userID, message string, kind models.NotificationType) (models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Type:      kind,
		CreatedAt: time.Now(),
	}
	r.s.notifications[n.ID] = n
	return n, nil
}

func (r *notificationsRepo) ListByUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *notificationsRepo) MarkRead(_ context.Context, id, userID string) (models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return models.Notification{}, models.ErrNotificationNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return n, nil
}

// ---------------- agent logs ----------------

type agentLogsRepo struct{ s *Store }

func (r *agentLogsRepo) Create(_ context.Context, l models.AgentLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Timestamp = time.Now()
	r.s.agentLogs = append(r.s.agentLogs, l)
	return nil
}

func (r *agentLogsRepo) List(_ context.Context, limit int) ([]models.AgentLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.AgentLog
	for i := len(r.s.agentLogs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.agentLogs[i])
	}
	return out, nil
}

func (r *agentLogsRepo) CountErrorsSince(_ context.Context, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, l := range r.s.agentLogs {
		if l.Timestamp.After(since) {
			if _, ok := l.Details["error"]; ok {
				n++
			}
		}
	}
	return n, nil
}
