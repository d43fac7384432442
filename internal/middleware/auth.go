package middleware

import (
	"strings"

	"task-manager/internal/api/response"
	"task-manager/internal/auth"
	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdentityKey adalah key Locals untuk user yang sudah diverifikasi.
const IdentityKey = "identity"

const localToken = "token"

// UseToken memverifikasi bearer access token dan menyimpan user yang
// dimuat ulang dari database ke Locals.
func UseToken(authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return response.Fail(c, fiber.StatusUnauthorized, "token_invalid", "Not authenticated")
		}

		user, err := authn.Verify(c.UserContext(), token, auth.KindAccess)
		if err != nil {
			logger.SecurityLogger.Warn("Rejected bearer token",
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Error(err),
			)
			return response.Error(c, err)
		}

		c.Locals(IdentityKey, user)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// BearerToken mengambil token dari header "Authorization: Bearer <token>".
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// CurrentUser mengembalikan user yang sudah diverifikasi oleh UseToken.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(IdentityKey).(*models.User)
	return user
}

func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}

// SetCurrentUser dipakai route yang memverifikasi token dari sumber lain
// (query string WebSocket).
func SetCurrentUser(c *fiber.Ctx, user *models.User) {
	c.Locals(IdentityKey, user)
}
