package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const performerKey = "auth_performer"

// PerformerMiddleware resolves who is calling from an optional bearer token.
type PerformerMiddleware struct {
	tokens   *TokenManager
	required bool
}

// NewPerformerMiddleware constructs middleware. A nil token manager accepts
// no tokens, so every caller is the system performer unless required is set.
func NewPerformerMiddleware(tokens *TokenManager, required bool) *PerformerMiddleware {
	return &PerformerMiddleware{tokens: tokens, required: required}
}

// Handle stores the performer on the request context.
func (m *PerformerMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if m.required {
			return apperrors.NewUnauthorized("missing authorization header")
		}
		c.Locals(performerKey, domain.Performer{})
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}
	if m.tokens == nil {
		return apperrors.NewUnauthorized("token verification is not configured")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	performer := claims.Performer()
	if performer.Name == "" && performer.Email == "" {
		return apperrors.NewUnauthorized("token carries no identity")
	}

	c.Locals(performerKey, performer)
	return c.Next()
}

// PerformerFromContext returns the caller identity. Requests that never went
// through the middleware act as the system performer.
func PerformerFromContext(c *fiber.Ctx) domain.Performer {
	performer, _ := c.Locals(performerKey).(domain.Performer)
	return performer
}
