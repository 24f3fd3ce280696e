package models

import "errors"

// Ledger errors. Handlers map these to HTTP statuses in httpx.
var (
	ErrInvalidAmount              = errors.New("amount must be greater than 0")
	ErrSameAccountTransfer        = errors.New("cannot transfer to the same account")
	ErrAccountNotFound            = errors.New("account not found")
	ErrSourceAccountNotFound      = errors.New("source account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrInsufficientFunds          = errors.New("insufficient funds")
)

var (
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrEmailTaken           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
