package services

import (
	"errors"
	"strings"

	"team-pairing-system/models"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

var errTooManyActive = errors.New("You can only activate 8 players.")

// PlayerDetail is a player with its match history and stats.
type PlayerDetail struct {
	models.Player
	MatchHistory []models.PlayerMatch `json:"match_history"`
	Stats        models.MatchStats    `json:"stats"`
}

// ListPlayers returns every player, optionally filtered by ?q= (accent and
// case insensitive) and ?active=true|false.
func (s *PlayerService) ListPlayers(c *fiber.Ctx) error {
	db := s.DB.WithContext(c.UserContext()).Model(&models.Player{}).Order("id ASC")

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		db = db.Where("search_name LIKE ?", "%"+models.FoldName(q)+"%")
	}
	switch c.Query("active") {
	case "true":
		db = db.Where("active = ?", true)
	case "false":
		db = db.Where("active = ?", false)
	}

	players := []models.Player{}
	if err := db.Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	return c.JSON(players)
}

type createPlayerRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active"`
}

func (s *PlayerService) CreatePlayer(c *fiber.Ctx) error {
	var req createPlayerRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	player := &models.Player{Name: name, SearchName: models.FoldName(name)}
	player.SetLists([]string{})

	err := s.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if req.Active != nil && *req.Active {
			if err := ensureActiveSlot(tx, 0); err != nil {
				return err
			}
			player.Active = true
		}
		return tx.Create(player).Error
	})
	if errors.Is(err, errTooManyActive) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		utils.Log.WithError(err).Error("❌ [PLAYERS] create failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create player"})
	}
	utils.Log.WithField("player_id", player.ID).Infof("🧑 [PLAYERS] created %s", player.Name)
	return c.Status(fiber.StatusCreated).JSON(player)
}

func (s *PlayerService) GetPlayer(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	history := []models.PlayerMatch{}
	if err := s.DB.WithContext(c.UserContext()).
		Where("player_id = ?", player.ID).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(PlayerDetail{Player: *player, MatchHistory: history, Stats: models.Stats(history)})
}

type renamePlayerRequest struct {
	Name string `json:"name" validate:"required"`
}

// RenamePlayer changes the live name. Locked game rosters keep the old one.
func (s *PlayerService) RenamePlayer(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	var req renamePlayerRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}
	player.Name = name
	player.SearchName = models.FoldName(name)
	return s.savePlayer(c, player)
}

func (s *PlayerService) DeletePlayer(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	err = s.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("player_id = ?", player.ID).Delete(&models.PlayerMatch{}).Error; err != nil {
			return err
		}
		return tx.Delete(player).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete player"})
	}
	utils.Log.WithField("player_id", player.ID).Info("🗑️  [PLAYERS] deleted")
	return c.JSON(fiber.Map{"status": "ok"})
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetActive toggles the active flag. At most 8 players may be active.
func (s *PlayerService) SetActive(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	var req activeRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	err = s.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if *req.Active {
			if err := ensureActiveSlot(tx, player.ID); err != nil {
				return err
			}
		}
		player.Active = *req.Active
		return tx.Model(player).Update("active", player.Active).Error
	})
	if errors.Is(err, errTooManyActive) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update player"})
	}
	return c.JSON(player)
}

// ensureActiveSlot fails when 8 players other than exceptID are active.
func ensureActiveSlot(tx *gorm.DB, exceptID int) error {
	var n int64
	if err := tx.Model(&models.Player{}).
		Where("active = ? AND id <> ?", true, exceptID).
		Count(&n).Error; err != nil {
		return err
	}
	if n >= models.MaxActivePlayers {
		return errTooManyActive
	}
	return nil
}

type addListRequest struct {
	Text string `json:"text" validate:"required"`
}

func (s *PlayerService) AddList(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	var req addListRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "List text is required"})
	}

	lists := append(player.ListTexts(), text)
	player.SetLists(lists)
	// the first list becomes the default
	if player.DefaultIndex == nil {
		zero := 0
		player.DefaultIndex = &zero
	}
	return s.savePlayer(c, player)
}

func (s *PlayerService) DeleteList(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	idx, ok := intParam(c, "idx")
	lists := player.ListTexts()
	if !ok || idx >= len(lists) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "List index out of range"})
	}
	lists, player.DefaultIndex = RemoveList(lists, player.DefaultIndex, idx)
	player.SetLists(lists)
	return s.savePlayer(c, player)
}

// RemoveList drops lists[idx] and keeps the default pointing at the same
// list. Removing the default list moves the default to the first remaining
// one, or to none when no list is left.
func RemoveList(lists []string, def *int, idx int) ([]string, *int) {
	out := make([]string, 0, len(lists))
	out = append(out, lists[:idx]...)
	out = append(out, lists[idx+1:]...)
	if def == nil {
		return out, nil
	}
	d := *def
	switch {
	case d == idx:
		if len(out) == 0 {
			return out, nil
		}
		d = 0
	case idx < d:
		d--
	}
	return out, &d
}

type defaultListRequest struct {
	Index *int `json:"index" validate:"required"`
}

func (s *PlayerService) SetDefaultList(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	var req defaultListRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if *req.Index < 0 || *req.Index >= len(player.ListTexts()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Index out of range"})
	}
	idx := *req.Index
	player.DefaultIndex = &idx
	return s.savePlayer(c, player)
}

type addMatchRequest struct {
	Faction       string `json:"faction" validate:"required"`
	Result        string `json:"result" validate:"required,oneof=WIN DRAW LOSS"`
	OpponentLevel *int   `json:"opponent_level" validate:"omitempty,min=0,max=10"`
	Comment       string `json:"comment"`
}

func (s *PlayerService) AddMatch(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	var req addMatchRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	match := models.PlayerMatch{
		ID:            uuid.NewString(),
		PlayerID:      player.ID,
		Faction:       strings.TrimSpace(req.Faction),
		Result:        req.Result,
		OpponentLevel: req.OpponentLevel,
		Comment:       strings.TrimSpace(req.Comment),
	}
	if err := s.DB.WithContext(c.UserContext()).Create(&match).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to add match"})
	}
	return c.Status(fiber.StatusCreated).JSON(match)
}

func (s *PlayerService) DeleteMatch(c *fiber.Ctx) error {
	player, err := s.findPlayer(c)
	if player == nil {
		return err
	}
	res := s.DB.WithContext(c.UserContext()).
		Where("id = ? AND player_id = ?", c.Params("match_id"), player.ID).
		Delete(&models.PlayerMatch{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete match"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Match not found"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *PlayerService) findPlayer(c *fiber.Ctx) (*models.Player, error) {
	id, ok := intParam(c, "id")
	if !ok {
		return nil, invalidParam(c, "player id")
	}
	var player models.Player
	if err := s.DB.WithContext(c.UserContext()).First(&player, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Player not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch player"})
	}
	return &player, nil
}

func (s *PlayerService) savePlayer(c *fiber.Ctx, player *models.Player) error {
	if err := s.DB.WithContext(c.UserContext()).Save(player).Error; err != nil {
		utils.Log.WithError(err).WithField("player_id", player.ID).Error("❌ [PLAYERS] save failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save player"})
	}
	return c.JSON(player)
}
