package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const (
	// LocalTeacherID is the key to retrieve the authenticated teacher id from context
	LocalTeacherID = "teacher_id"
)

// TokenAuthenticator resolves a bearer token to a teacher id.
type TokenAuthenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// Auth creates an authentication middleware using teacher bearer tokens
func Auth(authenticator TokenAuthenticator, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" && websocket.IsWebSocketUpgrade(c) {
			// Browsers cannot set headers on a websocket handshake
			token = c.Query("access_token")
		}
		if token == "" {
			return domain.ErrUnauthorized
		}

		teacherID, err := authenticator.Authenticate(token)
		if err != nil {
			// Expired, forged and malformed tokens all look the same to the client
			logger.Debug("bearer token rejected",
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
			return domain.ErrUnauthorized
		}

		c.Locals(LocalTeacherID, teacherID)

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// GetTeacherID retrieves the teacher id from Fiber context
func GetTeacherID(c *fiber.Ctx) (uuid.UUID, error) {
	teacherID, ok := c.Locals(LocalTeacherID).(uuid.UUID)
	if !ok || teacherID == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return teacherID, nil
}
