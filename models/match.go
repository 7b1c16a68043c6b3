package models

// Match results recorded in a player's history.
const (
	ResultWin  = "WIN"
	ResultDraw = "DRAW"
	ResultLoss = "LOSS"
)

// PlayerMatch records one game a player reported outside the team planner.
type PlayerMatch struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlayerID      int    `gorm:"index;not null" json:"player_id"`
	Faction       string `json:"faction"`
	Result        string `json:"result" gorm:"type:varchar(8)"`
	OpponentLevel *int   `json:"opponent_level"`
	Comment       string `json:"comment"`

	Timestamps
}

// MatchStats summarizes a match history.
type MatchStats struct {
	Total   int      `json:"total"`
	Wins    int      `json:"wins"`
	Draws   int      `json:"draws"`
	Losses  int      `json:"losses"`
	Winrate *float64 `json:"winrate"` // percent, nil without matches
}

// Stats counts results; draws are not wins.
func Stats(history []PlayerMatch) MatchStats {
	var s MatchStats
	for _, m := range history {
		s.Total++
		switch m.Result {
		case ResultWin:
			s.Wins++
		case ResultDraw:
			s.Draws++
		case ResultLoss:
			s.Losses++
		}
	}
	if s.Total > 0 {
		w := float64(s.Wins) / float64(s.Total) * 100
		s.Winrate = &w
	}
	return s
}
