package services_test

import (
	"context"
	"testing"

	"github.com/ledgercore/banking-api/internal/models"
	"github.com/ledgercore/banking-api/internal/services"
	"github.com/shopspring/decimal"
)

func newAgentFixture(t *testing.T) (*ledgerFixture, *services.AgentService) {
	t.Helper()
	f := newLedgerFixture(t)
	agent := services.NewAgentService(
		f.store.Ledger(), f.store.Accounts(), f.store.AgentLogs(), f.notif,
		decimal.NewFromInt(1000), decimal.NewFromInt(100),
	)
	return f, agent
}

func countByType(ns []models.Notification, kind models.NotificationType) int {
	n := 0
	for _, x := range ns {
		if x.Type == kind {
			n++
		}
	}
	return n
}

func TestBalanceMonitorFlagsLargeWithdrawalsAndLowBalances(t *testing.T) {
	f, agent := newAgentFixture(t)
	ctx := context.Background()

	// One large withdrawal, final balance well above the low threshold.
	bigAcct, bigUID := f.newAccount(t, "5000.00")
	if _, err := f.svc.Withdraw(ctx, bigAcct, bigUID, dec(t, "1500.00"), ""); err != nil {
		t.Fatal(err)
	}
	// A separate account sitting below the low-balance threshold.
	_, lowUID := f.newAccount(t, "50.00")

	f.stopWP() // settle the transaction notifications before counting alerts

	report, err := agent.BalanceMonitor(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.LargeWithdrawalsDetected != 1 {
		t.Fatalf("large withdrawals = %d, want 1", report.LargeWithdrawalsDetected)
	}
	if report.LowBalanceAccountsDetected != 1 {
		t.Fatalf("low balance accounts = %d, want 1", report.LowBalanceAccountsDetected)
	}

	bigAlerts, err := f.notif.List(ctx, bigUID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if countByType(bigAlerts, models.NotifyAlert) != 1 {
		t.Fatalf("expected 1 alert for the large withdrawal, got %+v", bigAlerts)
	}
	lowAlerts, err := f.notif.List(ctx, lowUID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if countByType(lowAlerts, models.NotifyAlert) != 1 {
		t.Fatalf("expected 1 low-balance alert, got %+v", lowAlerts)
	}

	logs, err := agent.Logs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("agent logs = %d, want 2", len(logs))
	}
}

func TestCustomerAssistantSummarizesActivity(t *testing.T) {
	f, agent := newAgentFixture(t)
	ctx := context.Background()

	acct, uid := f.newAccount(t, "0")
	if _, err := f.svc.Deposit(ctx, acct, uid, dec(t, "100.00"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Withdraw(ctx, acct, uid, dec(t, "40.00"), ""); err != nil {
		t.Fatal(err)
	}

	report, err := agent.CustomerAssistant(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	s := report.Summary
	if s.TotalTransactions != 2 {
		t.Fatalf("total transactions = %d, want 2", s.TotalTransactions)
	}
	if s.TotalDeposited != "100.00" || s.TotalSpent != "40.00" || s.NetChange != "60.00" {
		t.Fatalf("summary = %+v", s)
	}
	if s.AverageTransactionAmount != "70.00" {
		t.Fatalf("average = %s, want 70.00", s.AverageTransactionAmount)
	}
	// deposited > 2x spent
	if report.Recommendation != "Great job saving! You might want to consider investment opportunities." {
		t.Fatalf("recommendation = %q", report.Recommendation)
	}
}

func TestSystemHealthReportsHealthy(t *testing.T) {
	_, agent := newAgentFixture(t)

	report, err := agent.SystemHealth(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != "healthy" || !report.Checks.Database {
		t.Fatalf("report = %+v", report)
	}

	logs, err := agent.Logs(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].AgentType != "system_health" {
		t.Fatalf("logs = %+v", logs)
	}
}
