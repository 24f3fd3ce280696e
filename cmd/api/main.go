package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgercore/banking-api/internal/api"
	"github.com/ledgercore/banking-api/internal/auth"
	"github.com/ledgercore/banking-api/internal/config"
	"github.com/ledgercore/banking-api/internal/db"
	"github.com/ledgercore/banking-api/internal/logger"
	"github.com/ledgercore/banking-api/internal/metrics"
	"github.com/ledgercore/banking-api/internal/middleware"
	"github.com/ledgercore/banking-api/internal/repository/postgres"
	"github.com/ledgercore/banking-api/internal/services"
	"github.com/ledgercore/banking-api/internal/worker"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	notifSvc := services.NewNotificationService(repos.Notifications)
	authSvc := services.NewAuthService(repos.Users, tm)
	acctSvc := services.NewAccountService(repos.Accounts)
	ledgerSvc := services.NewLedgerService(repos.Ledger, repos.Accounts, notifSvc, wp)
	agentSvc := services.NewAgentService(
		repos.Ledger, repos.Accounts, repos.AgentLogs, notifSvc,
		decimal.RequireFromString(cfg.LargeWithdrawalThreshold),
		decimal.RequireFromString(cfg.LowBalanceThreshold),
	)

	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		Auth:      middleware.NewAuthMiddleware(tm, cfg.Env),
		AuthSvc:   authSvc,
		AcctSvc:   acctSvc,
		LedgerSvc: ledgerSvc,
		NotifSvc:  notifSvc,
		AgentSvc:  agentSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
