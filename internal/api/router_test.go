package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledgercore/banking-api/internal/api"
	"github.com/ledgercore/banking-api/internal/auth"
	"github.com/ledgercore/banking-api/internal/config"
	"github.com/ledgercore/banking-api/internal/middleware"
	"github.com/ledgercore/banking-api/internal/repository/memory"
	"github.com/ledgercore/banking-api/internal/services"
	"github.com/ledgercore/banking-api/internal/worker"
	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()
	wp := worker.NewPool(2)
	t.Cleanup(wp.Stop)

	tm := auth.NewTokenManager("test-access", "test-refresh", "banking-api-test", time.Hour, 24*time.Hour)
	notifSvc := services.NewNotificationService(store.Notifications())

	cfg := config.Config{Env: "test", RateRPS: 0} // limiter off
	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		Auth:      middleware.NewAuthMiddleware(tm, cfg.Env),
		AuthSvc:   services.NewAuthService(store.Users(), tm),
		AcctSvc:   services.NewAccountService(store.Accounts()),
		LedgerSvc: services.NewLedgerService(store.Ledger(), store.Accounts(), notifSvc, wp),
		NotifSvc:  notifSvc,
		AgentSvc: services.NewAgentService(
			store.Ledger(), store.Accounts(), store.AgentLogs(), notifSvc,
			decimal.NewFromInt(1000), decimal.NewFromInt(100),
		),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends a JSON request, asserts the status code, and decodes the
// response into out when out is non-nil.
func doJSON(t *testing.T, method, url, token string, body any, wantCode int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantCode {
		t.Fatalf("%s %s: code=%d want=%d", method, url, resp.StatusCode, wantCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func registerAndLogin(t *testing.T, base, email string) string {
	t.Helper()
	doJSON(t, http.MethodPost, base+"/auth/register", "",
		map[string]string{"email": email, "password": "hunter22"}, http.StatusCreated, nil)

	var login struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	doJSON(t, http.MethodPost, base+"/auth/login", "",
		map[string]string{"email": email, "password": "hunter22"}, http.StatusOK, &login)
	if login.Token.AccessToken == "" {
		t.Fatal("no access token returned")
	}
	return login.Token.AccessToken
}

func createAccount(t *testing.T, base, token, accountType string) string {
	t.Helper()
	var resp struct {
		Account struct {
			ID string `json:"id"`
		} `json:"account"`
	}
	doJSON(t, http.MethodPost, base+"/accounts", token,
		map[string]string{"accountType": accountType}, http.StatusCreated, &resp)
	return resp.Account.ID
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		map[string]string{"email": "a@b.com", "password": "hunter22"}, http.StatusCreated, nil)
	// duplicate registration
	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		map[string]string{"email": "a@b.com", "password": "hunter22"}, http.StatusConflict, nil)
	// bad credentials
	doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		map[string]string{"email": "a@b.com", "password": "wrong"}, http.StatusUnauthorized, nil)
	// missing fields
	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		map[string]string{"email": "", "password": ""}, http.StatusBadRequest, nil)
	// short password and malformed email are validation failures, not server errors
	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		map[string]string{"email": "p@q.com", "password": "123"}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, srv.URL+"/auth/register", "",
		map[string]string{"email": "not-an-email", "password": "hunter22"}, http.StatusBadRequest, nil)

	var login struct {
		Token struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"token"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		map[string]string{"email": "a@b.com", "password": "hunter22"}, http.StatusOK, &login)

	// refresh rotates the pair
	doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "",
		map[string]string{"refresh_token": login.Token.RefreshToken}, http.StatusOK, nil)
	// an access token is not accepted as a refresh token
	doJSON(t, http.MethodPost, srv.URL+"/auth/refresh", "",
		map[string]string{"refresh_token": login.Token.AccessToken}, http.StatusUnauthorized, nil)
}

func TestEndpointsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, http.MethodGet, srv.URL+"/accounts", "", nil, http.StatusUnauthorized, nil)
	doJSON(t, http.MethodPost, srv.URL+"/transactions/deposit", "",
		map[string]any{"accountId": "x", "amount": 1}, http.StatusUnauthorized, nil)
	// system health is deliberately open
	doJSON(t, http.MethodGet, srv.URL+"/agents/system-health", "", nil, http.StatusOK, nil)
}

func TestBankingFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := registerAndLogin(t, srv.URL, "alice@example.com")
	bob := registerAndLogin(t, srv.URL, "bob@example.com")

	aliceAcct := createAccount(t, srv.URL, alice, "checking")
	bobAcct := createAccount(t, srv.URL, bob, "savings")

	// invalid account type
	doJSON(t, http.MethodPost, srv.URL+"/accounts", alice,
		map[string]string{"accountType": "offshore"}, http.StatusBadRequest, nil)

	// fund alice
	doJSON(t, http.MethodPost, srv.URL+"/transactions/deposit", alice,
		map[string]any{"accountId": aliceAcct, "amount": 500}, http.StatusCreated, nil)

	// overdraw rejected
	doJSON(t, http.MethodPost, srv.URL+"/transactions/withdraw", alice,
		map[string]any{"accountId": aliceAcct, "amount": 750}, http.StatusBadRequest, nil)

	// zero amount rejected
	doJSON(t, http.MethodPost, srv.URL+"/transactions/deposit", alice,
		map[string]any{"accountId": aliceAcct, "amount": 0}, http.StatusBadRequest, nil)

	// negative amounts rejected at the field level
	doJSON(t, http.MethodPost, srv.URL+"/transactions/withdraw", alice,
		map[string]any{"accountId": aliceAcct, "amount": -5}, http.StatusBadRequest, nil)
	doJSON(t, http.MethodPost, srv.URL+"/transactions/transfer", alice,
		map[string]any{"fromAccountId": aliceAcct, "toAccountId": bobAcct, "amount": -5}, http.StatusBadRequest, nil)

	// cross-user transfer is allowed
	var transfer struct {
		Transaction struct {
			ID          string  `json:"id"`
			AccountID   string  `json:"account_id"`
			ToAccountID *string `json:"to_account_id"`
		} `json:"transaction"`
	}
	doJSON(t, http.MethodPost, srv.URL+"/transactions/transfer", alice,
		map[string]any{"fromAccountId": aliceAcct, "toAccountId": bobAcct, "amount": 300}, http.StatusCreated, &transfer)
	if transfer.Transaction.AccountID != aliceAcct || transfer.Transaction.ToAccountID == nil || *transfer.Transaction.ToAccountID != bobAcct {
		t.Fatalf("transfer attribution wrong: %+v", transfer.Transaction)
	}

	// same-account transfer rejected
	doJSON(t, http.MethodPost, srv.URL+"/transactions/transfer", alice,
		map[string]any{"fromAccountId": aliceAcct, "toAccountId": aliceAcct, "amount": 1}, http.StatusBadRequest, nil)

	// balances via the account endpoints
	var acct struct {
		Account struct {
			Balance decimal.Decimal `json:"balance"`
		} `json:"account"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/accounts/"+aliceAcct, alice, nil, http.StatusOK, &acct)
	if !acct.Account.Balance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("alice balance = %s, want 200", acct.Account.Balance)
	}
	doJSON(t, http.MethodGet, srv.URL+"/accounts/"+bobAcct, bob, nil, http.StatusOK, &acct)
	if !acct.Account.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("bob balance = %s, want 300", acct.Account.Balance)
	}

	// history: owner sees rows newest-first, others get 403, ghosts 404
	var hist struct {
		Transactions []struct {
			Type string `json:"type"`
		} `json:"transactions"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/transactions/"+aliceAcct, alice, nil, http.StatusOK, &hist)
	if len(hist.Transactions) != 2 || hist.Transactions[0].Type != "transfer" {
		t.Fatalf("history = %+v", hist.Transactions)
	}
	doJSON(t, http.MethodGet, srv.URL+"/transactions/"+aliceAcct, bob, nil, http.StatusForbidden, nil)
	doJSON(t, http.MethodGet, srv.URL+"/accounts/"+aliceAcct, bob, nil, http.StatusForbidden, nil)
	doJSON(t, http.MethodGet, srv.URL+"/transactions/00000000-0000-0000-0000-000000000000", alice, nil, http.StatusNotFound, nil)

	// notifications endpoint is scoped to the caller
	doJSON(t, http.MethodGet, srv.URL+"/notifications", alice, nil, http.StatusOK, nil)
	doJSON(t, http.MethodPatch, srv.URL+"/notifications/ghost/read", alice, nil, http.StatusNotFound, nil)

	// agent endpoints respond for authenticated users
	doJSON(t, http.MethodPost, srv.URL+"/agents/balance-monitor", alice, nil, http.StatusOK, nil)
	doJSON(t, http.MethodGet, srv.URL+"/agents/customer-assistant", alice, nil, http.StatusOK, nil)
	doJSON(t, http.MethodGet, srv.URL+"/agents/logs", alice, nil, http.StatusOK, nil)
}
