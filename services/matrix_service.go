package services

import (
	"time"

	"team-pairing-system/matchup"
	"team-pairing-system/models"
	"team-pairing-system/pairing"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatrixService struct {
	DB *gorm.DB
}

func NewMatrixService(db *gorm.DB) *MatrixService {
	return &MatrixService{DB: db}
}

type matrixGame struct {
	ID             int            `json:"id"`
	OpponentName   string         `json:"opponent_name"`
	Armies         []pairing.Army `json:"armies"`
	RosterLockedAt *time.Time     `json:"roster_locked_at"`
	CreatedAt      time.Time      `json:"created_at"`
}

// MatrixPlayer is one roster line of the matrix view.
type MatrixPlayer struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ListLabel string `json:"list_label"`
}

type stateInfo struct {
	State      matchup.State      `json:"state"`
	Descriptor matchup.Descriptor `json:"descriptor"`
	Expected   *float64           `json:"expected"`
}

func rosterLines(roster pairing.Roster) []MatrixPlayer {
	out := make([]MatrixPlayer, 0, len(roster))
	for _, ref := range roster {
		id, ok := pairing.ResolvePlayerID(ref)
		if !ok {
			continue
		}
		out = append(out, MatrixPlayer{
			ID:        id,
			Name:      pairing.ResolvePlayerName(ref),
			ListLabel: pairing.ResolveDefaultListLabel(ref),
		})
	}
	return out
}

func stateLegend() []stateInfo {
	out := make([]stateInfo, 0, len(matchup.Order))
	for _, s := range matchup.Order {
		out = append(out, stateInfo{State: s, Descriptor: matchup.DescriptorOf(s), Expected: matchup.ExpectedScorePtr(s)})
	}
	return out
}

// GetMatrix returns the game header, its roster and the recorded states.
func (s *MatrixService) GetMatrix(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	roster, err := gameRoster(c.UserContext(), s.DB, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	return c.JSON(fiber.Map{
		"game": matrixGame{
			ID:             game.ID,
			OpponentName:   game.OpponentName,
			Armies:         game.ArmyList(),
			RosterLockedAt: game.RosterLockedAt,
			CreatedAt:      game.CreatedAt,
		},
		"players": rosterLines(roster),
		"matrix":  game.MatchupMatrix().ToMap(),
		"states":  stateLegend(),
	})
}

type matrixEntryRequest struct {
	PlayerID  *int   `json:"player_id" validate:"required"`
	ArmyIndex *int   `json:"army_index" validate:"required"`
	Value     string `json:"value"`
}

type saveMatrixRequest struct {
	Entries []matrixEntryRequest `json:"entries" validate:"dive"`
}

// SaveMatrix replaces the whole matrix. NONE is not accepted: a missing
// entry already means NONE.
func (s *MatrixService) SaveMatrix(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	var req saveMatrixRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	armies := len(game.ArmyList())
	m := matchup.Matrix{}
	for _, e := range req.Entries {
		if *e.PlayerID <= 0 || *e.ArmyIndex < 0 || *e.ArmyIndex >= armies {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player_id and army_index must be valid integers"})
		}
		state, ok := matchup.Parse(e.Value)
		if !ok || !state.Persistable() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid state " + e.Value})
		}
		m.Set(*e.PlayerID, *e.ArmyIndex, state)
	}

	game.SetMatrix(m)
	if err := s.DB.WithContext(c.UserContext()).Model(game).Update("matrix", game.Matrix).Error; err != nil {
		utils.Log.WithError(err).WithField("game_id", game.ID).Error("❌ [MATRIX] save failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save matrix"})
	}
	utils.Log.WithField("game_id", game.ID).Infof("🎯 [MATRIX] saved %d cells", len(m))
	return c.JSON(fiber.Map{"status": "ok", "matrix": m.ToMap()})
}

type cycleRequest struct {
	PlayerID  *int `json:"player_id" validate:"required"`
	ArmyIndex *int `json:"army_index" validate:"required"`
}

// CycleCell advances one cell to the next state in the click order.
func (s *MatrixService) CycleCell(c *fiber.Ctx) error {
	game, err := findGame(c, s.DB)
	if game == nil {
		return err
	}
	var req cycleRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if *req.PlayerID <= 0 || *req.ArmyIndex < 0 || *req.ArmyIndex >= len(game.ArmyList()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player_id and army_index must be valid integers"})
	}

	var next matchup.State
	err = s.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		// row lock, concurrent clicks must stack
		var fresh models.Game
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&fresh, game.ID).Error; err != nil {
			return err
		}
		m := fresh.MatchupMatrix()
		next = m.Cycle(*req.PlayerID, *req.ArmyIndex)
		fresh.SetMatrix(m)
		return tx.Model(&fresh).Update("matrix", fresh.Matrix).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update matrix"})
	}

	key := matchup.Key{PlayerID: *req.PlayerID, ArmyIndex: *req.ArmyIndex}
	return c.JSON(fiber.Map{
		"key":        key.String(),
		"value":      next,
		"descriptor": matchup.DescriptorOf(next),
		"expected":   matchup.ExpectedScorePtr(next),
		"army_label": pairing.ArmyLabel(game.ArmyList(), *req.ArmyIndex),
		"player_id":  *req.PlayerID,
	})
}
