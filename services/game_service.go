package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"team-pairing-system/models"
	"team-pairing-system/pairing"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GameService struct {
	DB     *gorm.DB
	Drafts DraftStore
}

func NewGameService(db *gorm.DB, drafts DraftStore) *GameService {
	return &GameService{DB: db, Drafts: drafts}
}

// GameListItem is the lightweight listing row.
type GameListItem struct {
	ID             int        `json:"id"`
	OpponentName   string     `json:"opponent_name"`
	Slug           string     `json:"slug"`
	ArmyCount      int        `json:"army_count"`
	Factions       []string   `json:"factions"`
	Scenario       *string    `json:"scenario"`
	FilledSlots    int        `json:"filled_slots"`
	RosterLockedAt *time.Time `json:"roster_locked_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type armyRequest struct {
	Faction string `json:"faction"`
	List    string `json:"list"`
}

type createGameRequest struct {
	OpponentName string        `json:"opponent_name"`
	Armies       []armyRequest `json:"armies"`
	Comment      string        `json:"comment"`
}

var (
	errOpponentRequired = errors.New("Opponent name is required")
	errArmyCount        = errors.New("You must define between 1 and 8 armies")
	errArmyIncomplete   = errors.New("Each army needs a faction and a list text")
	errFactionDuplicate = errors.New("Each faction must be unique (no duplicates)")
)

// validateArmies trims the armies and checks the creation rules.
func validateArmies(opponent string, in []armyRequest) ([]pairing.Army, error) {
	if strings.TrimSpace(opponent) == "" {
		return nil, errOpponentRequired
	}
	if len(in) < 1 || len(in) > models.MaxArmies {
		return nil, errArmyCount
	}
	seen := map[string]bool{}
	out := make([]pairing.Army, 0, len(in))
	for _, a := range in {
		faction := strings.TrimSpace(a.Faction)
		list := strings.TrimSpace(a.List)
		if faction == "" || list == "" {
			return nil, errArmyIncomplete
		}
		if seen[faction] {
			return nil, errFactionDuplicate
		}
		seen[faction] = true
		out = append(out, pairing.Army{Faction: faction, List: list})
	}
	return out, nil
}

// CreateGame registers a new opponent with its armies.
func (s *GameService) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	armies, err := validateArmies(req.OpponentName, req.Armies)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	game := &models.Game{
		OpponentName: strings.TrimSpace(req.OpponentName),
		Comment:      strings.TrimSpace(req.Comment),
		Armies:       datatypes.NewJSONType(armies),
		Matrix:       datatypes.NewJSONType(map[string]string{}),
		Pairings:     datatypes.NewJSONType([]pairing.Slot{}),
		Roster:       datatypes.NewJSONType([]pairing.SnapshotPlayer{}),
	}

	err = s.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return err
		}
		// slug carries the id so two games against one opponent stay distinct
		game.Slug = slug.Make(game.OpponentName + " " + strconv.Itoa(game.ID))
		return tx.Model(game).Update("slug", game.Slug).Error
	})
	if err != nil {
		utils.Log.WithError(err).Error("❌ [GAMES] create failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create game"})
	}

	utils.Log.WithField("game_id", game.ID).Infof("🆕 [GAMES] created vs %s (%d armies)", game.OpponentName, len(armies))
	return c.Status(fiber.StatusCreated).JSON(game)
}

// ListGames returns every game, newest first.
func (s *GameService) ListGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.WithContext(c.UserContext()).Order("created_at DESC, id DESC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}

	out := make([]GameListItem, 0, len(games))
	for i := range games {
		g := &games[i]
		armies := g.ArmyList()
		factions := make([]string, len(armies))
		for j, a := range armies {
			factions[j] = a.Faction
		}
		filled := 0
		for _, sl := range g.SavedPairings().Pairings {
			if sl.Filled() {
				filled++
			}
		}
		out = append(out, GameListItem{
			ID:             g.ID,
			OpponentName:   g.OpponentName,
			Slug:           g.Slug,
			ArmyCount:      len(armies),
			Factions:       factions,
			Scenario:       g.Scenario,
			FilledSlots:    filled,
			RosterLockedAt: g.RosterLockedAt,
			CreatedAt:      g.CreatedAt,
		})
	}
	return c.JSON(out)
}

func (s *GameService) GetGame(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	return c.JSON(game)
}

// DeleteGame soft-deletes a game and drops its draft.
func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	if err := s.DB.WithContext(c.UserContext()).Delete(game).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
	}
	if s.Drafts != nil {
		if err := s.Drafts.Delete(c.UserContext(), game.ID); err != nil {
			utils.Log.WithError(err).WithField("game_id", game.ID).Warn("⚠️  [GAMES] draft cleanup failed")
		}
	}
	utils.Log.WithField("game_id", game.ID).Info("🗑️  [GAMES] soft-deleted")
	return c.JSON(fiber.Map{"status": "ok", "id": game.ID})
}

// UndeleteGame restores a soft-deleted game
func (s *GameService) UndeleteGame(c *fiber.Ctx) error {
	id, ok := intParam(c, "id")
	if !ok {
		return invalidParam(c, "game id")
	}

	var game models.Game
	if err := s.DB.WithContext(c.UserContext()).Unscoped().First(&game, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if !game.DeletedAt.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game is not deleted"})
	}
	if err := s.DB.WithContext(c.UserContext()).Unscoped().Model(&game).Update("deleted_at", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to restore game"})
	}
	return c.JSON(fiber.Map{"status": "restored", "id": game.ID})
}

type commentRequest struct {
	Comment string `json:"comment" validate:"max=10000"`
}

func (s *GameService) UpdateComment(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	var req commentRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	game.Comment = strings.TrimSpace(req.Comment)
	if err := s.DB.WithContext(c.UserContext()).Model(game).Update("comment", game.Comment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save comment"})
	}
	return c.JSON(game)
}

// LockRoster freezes the active players into the game. Relocking replaces
// the snapshot and needs ?force=true.
func (s *GameService) LockRoster(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	if game.RosterLocked() && c.Query("force") != "true" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "roster already locked", "roster_locked_at": game.RosterLockedAt})
	}

	players, err := activePlayers(c.UserContext(), s.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	if len(players) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no active players to lock"})
	}

	snaps := make([]pairing.SnapshotPlayer, 0, len(players))
	for i := range players {
		snaps = append(snaps, players[i].Snapshot())
	}
	now := time.Now().UTC()
	game.Roster = datatypes.NewJSONType(snaps)
	game.RosterLockedAt = &now

	if err := s.DB.WithContext(c.UserContext()).Model(game).Updates(map[string]any{
		"roster":           game.Roster,
		"roster_locked_at": now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to lock roster"})
	}
	utils.Log.WithField("game_id", game.ID).Infof("🔒 [GAMES] roster locked with %d players", len(snaps))
	return c.JSON(game)
}
