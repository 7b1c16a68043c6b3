package services

import (
	"context"
	"errors"

	"team-pairing-system/models"
	"team-pairing-system/pairing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// findGame loads a game by route id, writing the 400/404/500 response when
// it cannot. A nil game means the response is already written.
func findGame(c *fiber.Ctx, db *gorm.DB) (*models.Game, error) {
	id, ok := intParam(c, "id")
	if !ok {
		return nil, invalidParam(c, "game id")
	}
	var game models.Game
	if err := db.WithContext(c.UserContext()).First(&game, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
	}
	return &game, nil
}

func loadGame(ctx context.Context, db *gorm.DB, id int) (*models.Game, error) {
	var game models.Game
	if err := db.WithContext(ctx).First(&game, id).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// activePlayers returns the active roster ordered by id.
func activePlayers(ctx context.Context, db *gorm.DB) ([]models.Player, error) {
	var players []models.Player
	err := db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&players).Error
	return players, err
}

// gameRoster is the roster a game pairs from: the frozen snapshot when the
// roster is locked, the active players otherwise.
func gameRoster(ctx context.Context, db *gorm.DB, game *models.Game) (pairing.Roster, error) {
	if game.RosterLocked() {
		return game.SnapshotRoster(), nil
	}
	players, err := activePlayers(ctx, db)
	if err != nil {
		return nil, err
	}
	roster := make(pairing.Roster, 0, len(players))
	for i := range players {
		roster = append(roster, players[i].Live())
	}
	return roster, nil
}

// nameRoster resolves display names for summaries. Unlocked games fall back
// to every live player so a deactivated player still resolves.
func nameRoster(ctx context.Context, db *gorm.DB, game *models.Game) (pairing.Roster, error) {
	if game.RosterLocked() {
		return game.SnapshotRoster(), nil
	}
	var players []models.Player
	if err := db.WithContext(ctx).Order("id ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	roster := make(pairing.Roster, 0, len(players))
	for i := range players {
		roster = append(roster, players[i].Live())
	}
	return roster, nil
}
