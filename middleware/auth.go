// middleware/auth.go
package middleware

import (
	"team-pairing-system/services"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// sessionLoggedIn reports whether the request carries a logged-in team session.
func sessionLoggedIn(c *fiber.Ctx, store *session.Store) bool {
	if store == nil {
		return false
	}
	sess, err := store.Get(c)
	if err != nil {
		return false
	}
	ok, _ := sess.Get(services.SessionLoggedIn).(bool)
	return ok
}

// TeamAuthMiddleware accepts either a logged-in team session or the service
// bearer token.
func TeamAuthMiddleware(store *session.Store, serviceToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenMatches(bearerToken(c), serviceToken) {
			c.Locals(LocalAuthVia, "service")
			return c.Next()
		}
		if sessionLoggedIn(c, store) {
			c.Locals(LocalAuthVia, "session")
			return c.Next()
		}

		utils.Log.Debugf("🚫 [TEAM_AUTH] unauthenticated %s %s", c.Method(), c.Path())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Login required",
		})
	}
}
