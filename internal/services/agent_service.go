package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
	"github.com/shopspring/decimal"
)

// AgentService runs the analytics "agents": deterministic aggregations over the
// ledger, nothing learned. Results are logged to agent_logs for the audit trail.
type AgentService struct {
	ledger   repo.Ledger
	accounts repo.Accounts
	logs     repo.AgentLogs
	notifier *NotificationService

	largeWithdrawal decimal.Decimal
	lowBalance      decimal.Decimal
}

func NewAgentService(l repo.Ledger, a repo.Accounts, logs repo.AgentLogs, n *NotificationService, largeWithdrawal, lowBalance decimal.Decimal) *AgentService {
	return &AgentService{
		ledger:          l,
		accounts:        a,
		logs:            logs,
		notifier:        n,
		largeWithdrawal: largeWithdrawal,
		lowBalance:      lowBalance,
	}
}

func (s *AgentService) logAction(ctx context.Context, agentType, action string, details map[string]any) {
	err := s.logs.Create(ctx, models.AgentLog{AgentType: agentType, Action: action, Details: details})
	if err != nil {
		slog.Error("log agent action", "agent_type", agentType, "err", err)
	}
}

type BalanceMonitorReport struct {
	LargeWithdrawalsDetected   int `json:"largeWithdrawalsDetected"`
	LowBalanceAccountsDetected int `json:"lowBalanceAccountsDetected"`
}

// BalanceMonitor alerts owners of recent large withdrawals and of accounts
// running low.
func (s *AgentService) BalanceMonitor(ctx context.Context) (BalanceMonitorReport, error) {
	withdrawals, err := s.ledger.LargeWithdrawalsSince(ctx, s.largeWithdrawal, time.Now().Add(-time.Hour))
	if err != nil {
		return BalanceMonitorReport{}, err
	}
	for _, w := range withdrawals {
		s.notifier.SendAlert(ctx, w.UserID,
			"Large withdrawal detected: $"+w.Amount.StringFixed(2)+". If this wasn't you, please contact support immediately.")
		s.logAction(ctx, "balance_monitor", "large_withdrawal_alert", map[string]any{
			"userId":    w.UserID,
			"amount":    w.Amount.StringFixed(2),
			"accountId": w.AccountID,
		})
		slog.Warn("large withdrawal detected", "user_id", w.UserID, "amount", w.Amount, "account_id", w.AccountID)
	}

	low, err := s.accounts.LowBalance(ctx, s.lowBalance)
	if err != nil {
		return BalanceMonitorReport{}, err
	}
	for _, a := range low {
		s.notifier.SendAlert(ctx, a.UserID, "Your account balance is low: $"+a.Balance.StringFixed(2))
		s.logAction(ctx, "balance_monitor", "low_balance_alert", map[string]any{
			"userId":    a.UserID,
			"balance":   a.Balance.StringFixed(2),
			"accountId": a.ID,
		})
	}

	return BalanceMonitorReport{
		LargeWithdrawalsDetected:   len(withdrawals),
		LowBalanceAccountsDetected: len(low),
	}, nil
}

type SpendingSummary struct {
	Period                   string `json:"period"`
	TotalTransactions        int    `json:"totalTransactions"`
	TotalSpent               string `json:"totalSpent"`
	TotalDeposited           string `json:"totalDeposited"`
	NetChange                string `json:"netChange"`
	AverageTransactionAmount string `json:"averageTransactionAmount"`
}

type SpendingReport struct {
	Summary        SpendingSummary `json:"summary"`
	Recommendation string          `json:"recommendation"`
}

// CustomerAssistant summarizes the user's last 30 days of activity.
func (s *AgentService) CustomerAssistant(ctx context.Context, userID string) (SpendingReport, error) {
	txns, err := s.ledger.ListByUserSince(ctx, userID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return SpendingReport{}, err
	}

	totalSpent := decimal.Zero
	totalDeposited := decimal.Zero
	for _, txn := range txns {
		switch txn.Type {
		case models.TxnWithdrawal, models.TxnTransfer:
			totalSpent = totalSpent.Add(txn.Amount)
		case models.TxnDeposit:
			totalDeposited = totalDeposited.Add(txn.Amount)
		}
	}

	avg := decimal.Zero
	if len(txns) > 0 {
		avg = totalSpent.Add(totalDeposited).DivRound(decimal.NewFromInt(int64(len(txns))), 2)
	}

	summary := SpendingSummary{
		Period:                   "Last 30 days",
		TotalTransactions:        len(txns),
		TotalSpent:               totalSpent.StringFixed(2),
		TotalDeposited:           totalDeposited.StringFixed(2),
		NetChange:                totalDeposited.Sub(totalSpent).StringFixed(2),
		AverageTransactionAmount: avg.StringFixed(2),
	}

	var recommendation string
	switch {
	case totalSpent.GreaterThan(totalDeposited):
		recommendation = "You're spending more than you're depositing. Consider reviewing your expenses."
	case totalDeposited.GreaterThan(totalSpent.Mul(decimal.NewFromInt(2))):
		recommendation = "Great job saving! You might want to consider investment opportunities."
	default:
		recommendation = "Your spending and saving are balanced. Keep up the good work!"
	}

	s.logAction(ctx, "customer_assistant", "spending_summary", map[string]any{
		"userId":         userID,
		"summary":        summary,
		"recommendation": recommendation,
	})

	return SpendingReport{Summary: summary, Recommendation: recommendation}, nil
}

type HealthChecks struct {
	Database     bool  `json:"database"`
	ResponseTime int64 `json:"responseTime"`
	ErrorRate    int   `json:"errorRate"`
}

type HealthReport struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp time.Time    `json:"timestamp"`
}

func (s *AgentService) SystemHealth(ctx context.Context) (HealthReport, error) {
	var checks HealthChecks

	start := time.Now()
	if err := s.ledger.Ping(ctx); err == nil {
		checks.Database = true
		checks.ResponseTime = time.Since(start).Milliseconds()
	}

	if n, err := s.logs.CountErrorsSince(ctx, time.Now().Add(-time.Hour)); err == nil {
		checks.ErrorRate = n
	}

	status := "degraded"
	if checks.Database && checks.ResponseTime < 300 {
		status = "healthy"
	}

	s.logAction(ctx, "system_health", "health_check", map[string]any{
		"status": status,
		"checks": checks,
	})
	if status == "degraded" {
		slog.Warn("system health degraded", "checks", checks)
	}

	return HealthReport{Status: status, Checks: checks, Timestamp: time.Now()}, nil
}

func (s *AgentService) Logs(ctx context.Context, limit int) ([]models.AgentLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.logs.List(ctx, limit)
}
