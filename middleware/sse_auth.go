// middleware/sse_auth.go
package middleware

import (
	"strings"

	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// StreamAuthMiddleware guards event streams. EventSource cannot send headers,
// so the service token may also come as ?token=.
//
// Usage:
//
//	app.Get("/api/games/:id/fight/stream", middleware.StreamAuthMiddleware(store, token), pairingService.StreamFight)
func StreamAuthMiddleware(store *session.Store, serviceToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(string(c.Request().URI().QueryArgs().Peek("token")))
		if accessToken == "" {
			accessToken = bearerToken(c)
		}

		if tokenMatches(accessToken, serviceToken) {
			c.Locals(LocalAuthVia, "service")
			return c.Next()
		}
		if sessionLoggedIn(c, store) {
			c.Locals(LocalAuthVia, "session")
			return c.Next()
		}

		utils.Log.WithField("ip", c.IP()).Warnf("[SSEAuth] ❌ rejected stream %s (token len=%d)", c.Path(), len(accessToken))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
}
