package handlers

import (
	"strings"

	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the fiber app with the global middleware and every route.
func NewApp(allowedOrigins []string, d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "team-pairing-system",
		BodyLimit: 64 * 1024 * 1024, // layout archives
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		utils.Log.WithFields(map[string]any{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		}).Debug("[HTTP]")
		return err
	})

	origins := strings.Join(allowedOrigins, ",")
	if origins == "" {
		// credentials forbid a wildcard origin
		origins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	SetupRoutes(app, d)
	return app
}
