// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
)

// LocalAuthVia is set to "service" or "session" once a request is authenticated.
const LocalAuthVia = "auth_via"

// bearerToken extracts the token from "Authorization: Bearer <token>". A raw
// header value without the prefix is accepted too.
func bearerToken(c *fiber.Ctx) string {
	authHeader := strings.TrimSpace(c.Get("Authorization"))
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return strings.TrimSpace(token)
}

func tokenMatches(got, expected string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// ServiceTokenMiddleware only lets through requests carrying the service
// token. Used for machine-only routes such as layout import.
func ServiceTokenMiddleware(expectedToken string) fiber.Handler {
	if expectedToken == "" {
		utils.Log.Warn("⚠️  [SERVICE_AUTH] SERVICE_TOKEN is not set, service routes are closed")
	}

	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			utils.Log.Debugf("🚫 [SERVICE_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service authentication token missing",
			})
		}
		if !tokenMatches(token, expectedToken) {
			utils.Log.Warnf("❌ [SERVICE_AUTH] Invalid token for %s (got prefix: %.4s...)", c.Path(), token)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}

		c.Locals(LocalAuthVia, "service")
		return c.Next()
	}
}
