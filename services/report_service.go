package services

import (
	"cmp"
	"sort"
	"strings"

	"team-pairing-system/matchup"
	"team-pairing-system/models"
	"team-pairing-system/pairing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// ReportDetail is one saved pairing of a player.
type ReportDetail struct {
	GameID    int           `json:"game_id"`
	Opponent  string        `json:"opponent"`
	Scenario  string        `json:"scenario"`
	GameNo    int           `json:"game_no"`
	Faction   string        `json:"faction"`
	State     matchup.State `json:"state"`
	Expected  *float64      `json:"expected"`
	RealScore *int          `json:"real_score"`
	Delta     *float64      `json:"delta"`
}

// ReportRow aggregates one player over every game.
type ReportRow struct {
	PlayerID    int            `json:"player_id"`
	Name        string         `json:"name"`
	GamesPlayed int            `json:"games_played"`
	AvgScore    *float64       `json:"avg_score"`
	AvgDelta    *float64       `json:"avg_delta"`
	Details     []ReportDetail `json:"details"`
}

type reportAcc struct {
	row         ReportRow
	scoreSum    int
	deltaSum    float64
	deltaN      int
	hasLiveName bool
}

// BuildReport folds the saved pairings of games into one row per player.
// Live names win over roster snapshot names. Games played counts slots with
// a real score.
func BuildReport(games []models.Game, players []models.Player) []ReportRow {
	live := make(map[int]string, len(players))
	for _, p := range players {
		live[p.ID] = p.Name
	}

	accs := map[int]*reportAcc{}
	for i := range games {
		g := &games[i]
		saved := g.SavedPairings()
		scenario := ""
		if saved.Scenario != nil {
			scenario = *saved.Scenario
		}
		armies := g.ArmyList()
		matrix := g.MatchupMatrix()
		snapshot := g.SnapshotRoster()

		for _, s := range saved.Pairings {
			if !s.Filled() {
				continue
			}
			pid := *s.PlayerID
			acc, ok := accs[pid]
			if !ok {
				acc = &reportAcc{row: ReportRow{PlayerID: pid, Details: []ReportDetail{}}}
				accs[pid] = acc
			}
			if name, ok := live[pid]; ok {
				acc.row.Name = name
				acc.hasLiveName = true
			} else if !acc.hasLiveName {
				if ref, ok := snapshot.Find(pid); ok {
					acc.row.Name = pairing.ResolvePlayerName(ref)
				}
			}

			state := matrix.Get(pid, *s.ArmyIndex)
			expected := matchup.ExpectedScorePtr(state)
			delta := pairing.Delta(s.RealScore, expected)
			acc.row.Details = append(acc.row.Details, ReportDetail{
				GameID:    g.ID,
				Opponent:  g.OpponentName,
				Scenario:  scenario,
				GameNo:    s.GameNo,
				Faction:   pairing.ArmyLabel(armies, *s.ArmyIndex),
				State:     state,
				Expected:  expected,
				RealScore: s.RealScore,
				Delta:     delta,
			})
			if s.RealScore != nil {
				acc.row.GamesPlayed++
				acc.scoreSum += *s.RealScore
			}
			if delta != nil {
				acc.deltaSum += *delta
				acc.deltaN++
			}
		}
	}

	out := make([]ReportRow, 0, len(accs))
	for _, acc := range accs {
		row := acc.row
		if row.Name == "" {
			row.Name = pairing.DefaultPlayerName
		}
		if row.GamesPlayed > 0 {
			avg := float64(acc.scoreSum) / float64(row.GamesPlayed)
			row.AvgScore = &avg
		}
		if acc.deltaN > 0 {
			avg := acc.deltaSum / float64(acc.deltaN)
			row.AvgDelta = &avg
		}
		out = append(out, row)
	}
	SortReport(out, "avg_score", true)
	return out
}

// SortReport orders rows by key (name, games_played, avg_score, avg_delta).
// Missing averages always sort last. Ties fall back to player id.
func SortReport(rows []ReportRow, key string, desc bool) {
	col := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)

	average := func(r ReportRow) *float64 {
		if key == "avg_delta" {
			return r.AvgDelta
		}
		return r.AvgScore
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var c int
		switch key {
		case "name":
			c = col.CompareString(a.Name, b.Name)
		case "games_played":
			c = cmp.Compare(a.GamesPlayed, b.GamesPlayed)
		default:
			x, y := average(a), average(b)
			// missing averages last whatever the direction
			if (x == nil) != (y == nil) {
				return y == nil
			}
			if x != nil {
				c = cmp.Compare(*x, *y)
			}
		}
		if c == 0 {
			return a.PlayerID < b.PlayerID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// GetReport returns the cross-game report, ?sort=<key>&order=asc|desc.
func (s *ReportService) GetReport(c *fiber.Ctx) error {
	var games []models.Game
	if err := s.DB.WithContext(c.UserContext()).Order("id ASC").Find(&games).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	var players []models.Player
	if err := s.DB.WithContext(c.UserContext()).Find(&players).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}

	rows := BuildReport(games, players)
	key := strings.ToLower(c.Query("sort", "avg_score"))
	switch key {
	case "name", "games_played", "avg_score", "avg_delta":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sort must be one of name, games_played, avg_score, avg_delta"})
	}
	desc := key != "name"
	switch strings.ToLower(c.Query("order")) {
	case "asc":
		desc = false
	case "desc":
		desc = true
	}
	SortReport(rows, key, desc)
	return c.JSON(fiber.Map{"players": rows, "games": len(games)})
}
