package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"team-pairing-system/matchup"
	"team-pairing-system/models"
	"team-pairing-system/pairing"
	"team-pairing-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Legacy data files, as written by the first version of the planner.
const (
	LegacyPlayersFile = "players.json"
	LegacyGamesFile   = "games.json"
)

type LegacyMatch struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Faction       string `json:"faction"`
	Result        string `json:"result"`
	OpponentLevel *int   `json:"opponent_level"`
	Comment       string `json:"comment"`
}

type LegacyPlayer struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Lists        []string      `json:"lists"`
	DefaultIndex *int          `json:"default_index"`
	Active       *bool         `json:"active"`
	MatchHistory []LegacyMatch `json:"match_history"`
}

type LegacyGame struct {
	ID           int               `json:"id"`
	OpponentName string            `json:"opponent_name"`
	Armies       []pairing.Army    `json:"armies"`
	CreatedAt    string            `json:"created_at"`
	Comment      string            `json:"comment"`
	Matrix       map[string]string `json:"matrix"`
	Scenario     *string           `json:"scenario"`
	Pairings     []pairing.Slot    `json:"pairings"`
	Roster       []json.RawMessage `json:"roster"`
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Players int `json:"players"`
	Matches int `json:"matches"`
	Games   int `json:"games"`
	Skipped int `json:"skipped"`
}

// NormalizeLegacyPlayers fills a missing active flag: the first 8 players
// without one become active while fewer than 8 are active, the rest inactive.
func NormalizeLegacyPlayers(players []LegacyPlayer) {
	active := 0
	for i := range players {
		p := &players[i]
		if p.Active == nil {
			on := active < models.MaxActivePlayers
			p.Active = &on
			if on {
				active++
			}
			continue
		}
		if *p.Active {
			active++
		}
	}
}

func parseLegacyTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

func readLegacy(path string, dst any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// ImportLegacy upserts players.json and games.json from dir into db, keeping
// their ids. Missing files are skipped.
func ImportLegacy(ctx context.Context, db *gorm.DB, dir string) (ImportStats, error) {
	var stats ImportStats
	var players []LegacyPlayer
	var games []LegacyGame

	if _, err := readLegacy(filepath.Join(dir, LegacyPlayersFile), &players); err != nil {
		return stats, err
	}
	if _, err := readLegacy(filepath.Join(dir, LegacyGamesFile), &games); err != nil {
		return stats, err
	}
	NormalizeLegacyPlayers(players)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{UpdateAll: true}

		for _, lp := range players {
			if lp.ID <= 0 || strings.TrimSpace(lp.Name) == "" {
				stats.Skipped++
				continue
			}
			p := models.Player{
				ID:           lp.ID,
				Name:         strings.TrimSpace(lp.Name),
				SearchName:   models.FoldName(lp.Name),
				DefaultIndex: lp.DefaultIndex,
				Active:       *lp.Active,
			}
			lists := lp.Lists
			if lists == nil {
				lists = []string{}
			}
			p.SetLists(lists)
			if err := tx.Clauses(upsert).Create(&p).Error; err != nil {
				return fmt.Errorf("player %d: %w", lp.ID, err)
			}
			stats.Players++

			for j, lm := range lp.MatchHistory {
				m := models.PlayerMatch{
					ID:            lm.ID,
					PlayerID:      lp.ID,
					Faction:       lm.Faction,
					Result:        strings.ToUpper(lm.Result),
					OpponentLevel: lm.OpponentLevel,
					Comment:       lm.Comment,
				}
				if _, err := uuid.Parse(m.ID); err != nil {
					// stable, so a reimport updates the same row
					m.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("legacy-match:%d:%d:%s", lp.ID, j, lm.ID))).String()
				}
				m.CreatedAt = parseLegacyTime(lm.Date)
				if err := tx.Clauses(upsert).Create(&m).Error; err != nil {
					return fmt.Errorf("player %d match: %w", lp.ID, err)
				}
				stats.Matches++
			}
		}

		for _, lg := range games {
			if lg.ID <= 0 || strings.TrimSpace(lg.OpponentName) == "" {
				stats.Skipped++
				continue
			}
			g, err := legacyGame(lg)
			if err != nil {
				utils.Log.WithError(err).WithField("game_id", lg.ID).Warn("⚠️  [IMPORT] game skipped")
				stats.Skipped++
				continue
			}
			if err := tx.Clauses(upsert).Create(g).Error; err != nil {
				return fmt.Errorf("game %d: %w", lg.ID, err)
			}
			stats.Games++
		}

		return resyncSequences(tx)
	})
	return stats, err
}

func legacyGame(lg LegacyGame) (*models.Game, error) {
	created := parseLegacyTime(lg.CreatedAt)
	payload := pairing.Payload{Scenario: lg.Scenario, Pairings: lg.Pairings}
	if payload.Scenario != nil && *payload.Scenario == "" {
		payload.Scenario = nil
	}
	if err := pairing.Validate(payload, nil); err != nil {
		return nil, err
	}
	payload = pairing.Normalize(payload)

	g := &models.Game{
		ID:           lg.ID,
		OpponentName: strings.TrimSpace(lg.OpponentName),
		Slug:         slug.Make(lg.OpponentName + " " + fmt.Sprint(lg.ID)),
		Comment:      lg.Comment,
		Armies:       datatypes.NewJSONType(lg.Armies),
		Matrix:       datatypes.NewJSONType(map[string]string{}),
		Roster:       datatypes.NewJSONType([]pairing.SnapshotPlayer{}),
	}
	if lg.Armies == nil {
		g.Armies = datatypes.NewJSONType([]pairing.Army{})
	}
	if lg.Matrix != nil {
		g.SetMatrix(matchup.MatrixFromMap(lg.Matrix))
	}
	g.SetPairings(payload)

	var snaps []pairing.SnapshotPlayer
	for _, raw := range lg.Roster {
		ref, err := pairing.DecodePlayerRef(raw)
		if err != nil {
			return nil, fmt.Errorf("roster entry: %w", err)
		}
		if s, ok := ref.(pairing.SnapshotPlayer); ok {
			snaps = append(snaps, s)
		}
	}
	if len(snaps) > 0 {
		g.Roster = datatypes.NewJSONType(snaps)
		g.RosterLockedAt = &created
	}
	g.CreatedAt = created
	return g, nil
}

// resyncSequences moves postgres id sequences past the imported ids.
func resyncSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"players", "games"} {
		q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))", table, table)
		if err := tx.Exec(q).Error; err != nil {
			return fmt.Errorf("resync %s sequence: %w", table, err)
		}
	}
	return nil
}
