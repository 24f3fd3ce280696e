package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ledgercore/banking-api/internal/api/validate"
	"github.com/ledgercore/banking-api/internal/models"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteServiceError maps the service error taxonomy onto HTTP statuses:
// not-found 404, ownership 403, bad credentials 401, validation and business
// rules 400, duplicate registration 409, anything unclassified 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrSourceAccountNotFound),
		errors.Is(err, models.ErrDestinationAccountNotFound),
		errors.Is(err, models.ErrNotificationNotFound),
		errors.Is(err, models.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, models.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, models.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case errors.Is(err, models.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrSameAccountTransfer),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidAccountType),
		errors.Is(err, models.ErrInvalidEmail),
		errors.Is(err, models.ErrPasswordTooShort):
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		var verrs validate.Errs
		if errors.As(err, &verrs) {
			WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), verrs)
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
