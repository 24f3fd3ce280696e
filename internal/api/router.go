package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/ledgercore/banking-api/internal/api/httpx"
	"github.com/ledgercore/banking-api/internal/api/validate"
	"github.com/ledgercore/banking-api/internal/config"
	"github.com/ledgercore/banking-api/internal/middleware"
	"github.com/ledgercore/banking-api/internal/models"
	"github.com/ledgercore/banking-api/internal/services"
)

type RouterDeps struct {
	Cfg       config.Config
	Auth      *middleware.AuthMiddleware
	AuthSvc   *services.AuthService
	AcctSvc   *services.AccountService
	LedgerSvc *services.LedgerService
	NotifSvc  *services.NotificationService
	AgentSvc  *services.AgentService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// ---------- auth ----------
	r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
			return
		}
		var errs validate.Errs
		if e := validate.Required("email", req.Email); e != nil {
			errs = append(errs, *e)
		}
		if e := validate.Required("password", req.Password); e != nil {
			errs = append(errs, *e)
		}
		if len(errs) > 0 {
			httpx.WriteServiceError(w, errs)
			return
		}
		u, err := d.AuthSvc.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{"user": u})
	})

	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
			return
		}
		pair, u, err := d.AuthSvc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": pair, "user": u})
	})

	r.Post("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request", nil)
			return
		}
		pair, err := d.AuthSvc.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": pair})
	})

	// system health stays open, matching the original surface
	r.Get("/agents/system-health", func(w http.ResponseWriter, r *http.Request) {
		report, err := d.AgentSvc.SystemHealth(r.Context())
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, report)
	})

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.Auth)

		// ---------- accounts ----------
		r.Post("/accounts", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			var req struct {
				AccountType string `json:"accountType"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
				return
			}
			a, err := d.AcctSvc.Create(r.Context(), uid, models.AccountType(req.AccountType))
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusCreated, map[string]any{"account": a})
		})

		r.Get("/accounts", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			accounts, err := d.AcctSvc.List(r.Context(), uid)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
		})

		r.Get("/accounts/{accountId}", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			a, err := d.AcctSvc.Get(r.Context(), chi.URLParam(r, "accountId"), uid)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"account": a})
		})

		// ---------- transactions ----------
		r.Post("/transactions/deposit", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			var req struct {
				AccountID   string          `json:"accountId"`
				Amount      decimal.Decimal `json:"amount"`
				Description string          `json:"description"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
				return
			}
			var errs validate.Errs
			if e := validate.Required("accountId", req.AccountID); e != nil {
				errs = append(errs, *e)
			}
			if e := validate.Positive("amount", req.Amount); e != nil {
				errs = append(errs, *e)
			}
			if len(errs) > 0 {
				httpx.WriteServiceError(w, errs)
				return
			}
			txn, err := d.LedgerSvc.Deposit(r.Context(), req.AccountID, uid, req.Amount, req.Description)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusCreated, map[string]any{"transaction": txn})
		})

		r.Post("/transactions/withdraw", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			var req struct {
				AccountID   string          `json:"accountId"`
				Amount      decimal.Decimal `json:"amount"`
				Description string          `json:"description"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
				return
			}
			var errs validate.Errs
			if e := validate.Required("accountId", req.AccountID); e != nil {
				errs = append(errs, *e)
			}
			if e := validate.Positive("amount", req.Amount); e != nil {
				errs = append(errs, *e)
			}
			if len(errs) > 0 {
				httpx.WriteServiceError(w, errs)
				return
			}
			txn, err := d.LedgerSvc.Withdraw(r.Context(), req.AccountID, uid, req.Amount, req.Description)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusCreated, map[string]any{"transaction": txn})
		})

		r.Post("/transactions/transfer", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			var req struct {
				FromAccountID string          `json:"fromAccountId"`
				ToAccountID   string          `json:"toAccountId"`
				Amount        decimal.Decimal `json:"amount"`
				Description   string          `json:"description"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
				return
			}
			var errs validate.Errs
			if e := validate.Required("fromAccountId", req.FromAccountID); e != nil {
				errs = append(errs, *e)
			}
			if e := validate.Required("toAccountId", req.ToAccountID); e != nil {
				errs = append(errs, *e)
			}
			if e := validate.Positive("amount", req.Amount); e != nil {
				errs = append(errs, *e)
			}
			if len(errs) > 0 {
				httpx.WriteServiceError(w, errs)
				return
			}
			txn, err := d.LedgerSvc.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, uid, req.Amount, req.Description)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusCreated, map[string]any{"transaction": txn})
		})

		r.Get("/transactions/{accountId}", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			txns, err := d.LedgerSvc.History(r.Context(), chi.URLParam(r, "accountId"), uid, queryInt(r, "limit"))
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"transactions": txns})
		})

		// ---------- notifications ----------
		r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			notifications, err := d.NotifSvc.List(r.Context(), uid, queryInt(r, "limit"))
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
		})

		r.Patch("/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			n, err := d.NotifSvc.MarkRead(r.Context(), chi.URLParam(r, "id"), uid)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"notification": n})
		})

		// ---------- agents ----------
		r.Post("/agents/balance-monitor", func(w http.ResponseWriter, r *http.Request) {
			report, err := d.AgentSvc.BalanceMonitor(r.Context())
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, report)
		})

		r.Get("/agents/customer-assistant", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := middleware.UserID(r.Context())
			report, err := d.AgentSvc.CustomerAssistant(r.Context(), uid)
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, report)
		})

		r.Get("/agents/logs", func(w http.ResponseWriter, r *http.Request) {
			logs, err := d.AgentSvc.Logs(r.Context(), queryInt(r, "limit"))
			if err != nil {
				httpx.WriteServiceError(w, err)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"logs": logs})
		})
	})

	return r
}

func queryInt(r *http.Request, key string) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
