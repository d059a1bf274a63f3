// Package server provides the HTTP REST API for the job feed.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/extraction"
	"github.com/CoderSATTY/Jobs-Tinder/internal/llm"
	"github.com/CoderSATTY/Jobs-Tinder/internal/profile"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var extractionErr *extraction.ErrExtractionFailed
	var structuringErr *profile.ErrStructuringFailed

	switch {
	case errors.As(err, new(*ErrEmailAlreadyExists)):
		return http.StatusConflict
	case errors.As(err, new(*ErrInvalidCredentials)):
		return http.StatusUnauthorized
	case errors.As(err, new(*ErrUserNotFound)):
		return http.StatusNotFound
	case errors.As(err, new(*ErrValidation)):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.As(err, &extractionErr), errors.As(err, &structuringErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
