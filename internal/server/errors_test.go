package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/extraction"
	"github.com/CoderSATTY/Jobs-Tinder/internal/llm"
	"github.com/CoderSATTY/Jobs-Tinder/internal/profile"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"user not found", &ErrUserNotFound{}, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "job_id", Message: "required"}, http.StatusBadRequest},
		{"profile not found", db.ErrProfileNotFound, http.StatusNotFound},
		{"wrapped profile not found", fmt.Errorf("feed: %w", db.ErrProfileNotFound), http.StatusNotFound},
		{"quota exceeded", fmt.Errorf("embed: %w", llm.ErrQuotaExceeded), http.StatusTooManyRequests},
		{"extraction failed", &extraction.ErrExtractionFailed{Filename: "x.pdf", Reason: "empty"}, http.StatusUnprocessableEntity},
		{"structuring failed", &profile.ErrStructuringFailed{Reason: "not json"}, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
