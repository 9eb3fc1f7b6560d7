package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func clockOrNow(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

// requireID rejects identifiers that are not UUIDs before they reach the store.
func requireID(resource, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError(resource+" id is required", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError("invalid "+resource+" id", map[string]any{resource + "_id": id})
	}
	return nil
}

func requireOptionalID(resource string, id *string) error {
	if id == nil {
		return nil
	}
	return requireID(resource, *id)
}

// lookupError turns a missing row into NotFound and maps everything else.
func lookupError(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{resource + "_id": id})
	}
	return apperrors.MapError(err)
}

// referenceError reports a missing referenced record as a validation failure.
func referenceError(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError(resource+" not found", map[string]any{resource + "_id": id})
	}
	return apperrors.MapError(err)
}

// deleteError reports deletes blocked by existing references as a conflict.
func deleteError(err error, resource, id string) error {
	if repository.IsForeignKeyViolation(err) {
		return apperrors.NewConflict(resource+" is still referenced", map[string]any{resource + "_id": id})
	}
	return lookupError(err, resource, id)
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
