package services

import (
	"context"
	"fmt"

	"team-pairing-system/models"
	"team-pairing-system/pairing"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GameSink writes a board payload into one game row.
type GameSink struct {
	DB     *gorm.DB
	GameID int
}

func (s GameSink) SavePairings(ctx context.Context, p pairing.Payload) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", s.GameID).
		Updates(map[string]any{
			"scenario": p.Scenario,
			"pairings": datatypes.NewJSONType(p.Pairings),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("game %d not found", s.GameID)
	}
	return nil
}
