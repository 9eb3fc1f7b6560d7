package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewConflict("busy", nil), "CONFLICT", http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("resolve: %w", NewValidationError("bad", nil)), "VALIDATION_FAILED", http.StatusBadRequest},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "agents_email_key"}, "CONFLICT", http.StatusConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, "VALIDATION_FAILED", http.StatusBadRequest},
		{"check violation", &pgconn.PgError{Code: "23514"}, "VALIDATION_FAILED", http.StatusBadRequest},
		{"fiber error", fiber.NewError(http.StatusMethodNotAllowed, "nope"), "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed},
		{"anything else", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFound("ticket", map[string]any{"ticket_id": "x"}))
	assert.True(t, IsKind(err, "NOT_FOUND"))
	assert.False(t, IsKind(err, "CONFLICT"))
	assert.False(t, IsKind(errors.New("plain"), "NOT_FOUND"))
	assert.Equal(t, "ticket not found", ToDomainError(err).Message)
}
