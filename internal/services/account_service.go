package services

import (
	"context"
	"log/slog"

	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
)

type AccountService struct {
	r repo.Accounts
}

func NewAccountService(r repo.Accounts) *AccountService { return &AccountService{r: r} }

func (s *AccountService) Create(ctx context.Context, userID string, accountType models.AccountType) (models.Account, error) {
	if accountType == "" {
		accountType = models.AccountChecking
	}
	if !accountType.Valid() {
		return models.Account{}, models.ErrInvalidAccountType
	}
	a, err := s.r.Create(ctx, userID, accountType)
	if err != nil {
		return models.Account{}, err
	}
	slog.Info("account created", "user_id", userID, "account_type", accountType)
	return a, nil
}

func (s *AccountService) List(ctx context.Context, userID string) ([]models.Account, error) {
	return s.r.ListByUser(ctx, userID)
}

// Get distinguishes "no such account" from "not yours".
func (s *AccountService) Get(ctx context.Context, accountID, userID string) (models.Account, error) {
	a, err := s.r.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	if a.UserID != userID {
		return models.Account{}, models.ErrUnauthorized
	}
	return a, nil
}
