// handlers/routes.go
package handlers

import (
	"team-pairing-system/middleware"
	"team-pairing-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Deps carries everything the routes are wired to.
type Deps struct {
	Sessions     *session.Store
	ServiceToken string

	Auth    *services.AuthService
	Players *services.PlayerService
	Games   *services.GameService
	Matrix  *services.MatrixService
	Pairing *services.PairingService
	Layouts *services.LayoutService
	Report  *services.ReportService
}

func SetupRoutes(app *fiber.App, d Deps) {
	// 🔓 Public
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/api/login", d.Auth.Login)
	app.Post("/api/logout", d.Auth.Logout)
	app.Get("/api/session", d.Auth.Status)

	// 📡 Event stream, token may come from the query string
	app.Get("/api/games/:id/fight/stream", middleware.StreamAuthMiddleware(d.Sessions, d.ServiceToken), d.Pairing.StreamFight)

	// 🤖 Service token only
	app.Post("/api/layouts/import", middleware.ServiceTokenMiddleware(d.ServiceToken), d.Layouts.ImportLayouts)

	// 🔐 Team session or service token
	team := middleware.TeamAuthMiddleware(d.Sessions, d.ServiceToken)
	app.Get("/layouts/:file", team, d.Layouts.ServeLayout)

	api := app.Group("/api", team)
	SetupPlayerRoutes(api, d.Players)
	SetupGameRoutes(api, d.Games, d.Matrix, d.Pairing)

	api.Get("/layouts", d.Layouts.GetLayouts)
	api.Get("/report", d.Report.GetReport)
}

func SetupPlayerRoutes(r fiber.Router, ps *services.PlayerService) {
	r.Get("/players", ps.ListPlayers)
	r.Post("/players", ps.CreatePlayer)
	r.Get("/players/:id", ps.GetPlayer)
	r.Patch("/players/:id", ps.RenamePlayer)
	r.Delete("/players/:id", ps.DeletePlayer)
	r.Post("/players/:id/active", ps.SetActive)

	// army lists
	r.Post("/players/:id/lists", ps.AddList)
	r.Delete("/players/:id/lists/:idx", ps.DeleteList)
	r.Post("/players/:id/default_list", ps.SetDefaultList)

	// match history
	r.Post("/players/:id/matches", ps.AddMatch)
	r.Delete("/players/:id/matches/:match_id", ps.DeleteMatch)
}

func SetupGameRoutes(r fiber.Router, gs *services.GameService, ms *services.MatrixService, ps *services.PairingService) {
	r.Get("/games", gs.ListGames)
	r.Post("/games", gs.CreateGame)
	r.Get("/games/:id", gs.GetGame)
	r.Delete("/games/:id", gs.DeleteGame)
	r.Post("/games/:id/restore", gs.UndeleteGame)
	r.Patch("/games/:id/comment", gs.UpdateComment)
	r.Post("/games/:id/roster/lock", gs.LockRoster)

	// 🎯 Matchup matrix
	r.Get("/games/:id/matrix", ms.GetMatrix)
	r.Post("/games/:id/matrix", ms.SaveMatrix)
	r.Post("/games/:id/matrix/cycle", ms.CycleCell)

	// 💾 Persisted pairings
	r.Get("/games/:id/pairings", ps.GetPairings)
	r.Post("/games/:id/pairings", ps.SavePairings)

	// ⚔️ Draft board
	r.Get("/games/:id/fight", ps.GetFight)
	r.Post("/games/:id/fight/assign", ps.Assign)
	r.Post("/games/:id/fight/layout", ps.SetLayout)
	r.Post("/games/:id/fight/clear", ps.ClearSlot)
	r.Post("/games/:id/fight/scenario", ps.SetScenario)
	r.Post("/games/:id/fight/score", ps.SetScore)
	r.Post("/games/:id/fight/reset", ps.Reset)
	r.Post("/games/:id/fight/save", ps.Save)
	r.Post("/games/:id/fight/discard", ps.Discard)
	r.Post("/games/:id/fight/apply", ps.Apply)
	r.Get("/games/:id/optimize", ps.Optimize)
}
