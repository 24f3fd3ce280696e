package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgercore/banking-api/internal/auth"
	"github.com/ledgercore/banking-api/internal/models"
	"github.com/ledgercore/banking-api/internal/repository/memory"
	"github.com/ledgercore/banking-api/internal/services"
)

func newAuthService() *services.AuthService {
	store := memory.New()
	tm := auth.NewTokenManager("test-access", "test-refresh", "banking-api-test", time.Hour, 24*time.Hour)
	return services.NewAuthService(store.Users(), tm)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "p@q.com", "123")
	if !errors.Is(err, models.ErrPasswordTooShort) {
		t.Fatalf("short password: err = %v, want ErrPasswordTooShort", err)
	}
	_, err = svc.Register(ctx, "not-an-email", "hunter22")
	if !errors.Is(err, models.ErrInvalidEmail) {
		t.Fatalf("bad email: err = %v, want ErrInvalidEmail", err)
	}

	// nothing was persisted by the rejected attempts
	if _, _, err := svc.Login(ctx, "p@q.com", "123"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("login after rejected register: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.com", "hunter22"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "hunter22"); !errors.Is(err, models.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}
