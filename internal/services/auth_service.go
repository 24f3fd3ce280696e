package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgercore/banking-api/internal/auth"
	"github.com/ledgercore/banking-api/internal/models"
	repo "github.com/ledgercore/banking-api/internal/repository"
)

type AuthService struct {
	users repo.Users
	tm    *auth.TokenManager
}

func NewAuthService(users repo.Users, tm *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tm: tm}
}

type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	u := models.User{Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 6 {
		return models.User{}, models.ErrPasswordTooShort
	}
	if _, err := s.users.GetByEmail(ctx, u.Email); err == nil {
		return models.User{}, models.ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	created, err := s.users.Create(ctx, u.Email, hash)
	if err != nil {
		return models.User{}, err
	}
	slog.Info("user registered", "email", created.Email)
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return TokenPair{}, models.User{}, models.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return TokenPair{}, models.User{}, models.ErrInvalidCredentials
	}
	access, refresh, exp, err := s.tm.GeneratePair(u.ID)
	if err != nil {
		return TokenPair{}, models.User{}, err
	}
	slog.Info("user logged in", "email", u.Email)
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    time.Until(exp).Truncate(time.Second),
	}, u, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, isRefresh, err := s.tm.ParseAny(refreshToken)
	if err != nil || !isRefresh {
		return TokenPair{}, models.ErrInvalidCredentials
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		return TokenPair{}, models.ErrInvalidCredentials
	}
	access, refresh, exp, err := s.tm.GeneratePair(claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    time.Until(exp).Truncate(time.Second),
	}, nil
}
