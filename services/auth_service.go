package services

import (
	"crypto/subtle"
	"strings"

	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionLoggedIn is the session key set after a successful team login.
const SessionLoggedIn = "logged_in"

// AuthService handles the shared team password.
type AuthService struct {
	TeamName     string
	TeamPassword string
	Sessions     *session.Store
}

func NewAuthService(teamName, teamPassword string, store *session.Store) *AuthService {
	return &AuthService{TeamName: teamName, TeamPassword: teamPassword, Sessions: store}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login checks the team password and marks the session.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	password := strings.TrimSpace(req.Password)
	if s.TeamPassword == "" || subtle.ConstantTimeCompare([]byte(password), []byte(s.TeamPassword)) != 1 {
		utils.Log.WithField("ip", c.IP()).Warn("🚫 [AUTH] invalid team password")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid password"})
	}

	sess, err := s.Sessions.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session unavailable"})
	}
	sess.Set(SessionLoggedIn, true)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save session"})
	}
	utils.Log.WithField("ip", c.IP()).Info("✅ [AUTH] team login")
	return c.JSON(fiber.Map{"status": "ok"})
}

// Logout clears the session.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	sess, err := s.Sessions.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Status reports whether the caller is logged in.
func (s *AuthService) Status(c *fiber.Ctx) error {
	loggedIn := false
	if sess, err := s.Sessions.Get(c); err == nil {
		loggedIn, _ = sess.Get(SessionLoggedIn).(bool)
	}
	return c.JSON(fiber.Map{"team_name": s.TeamName, "logged_in": loggedIn})
}
