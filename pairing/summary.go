// pairing/summary.go
package pairing

import (
	"strconv"

	"team-pairing-system/matchup"
)

// Phases names the role of each of the 8 games, by game number.
var Phases = [SlotCount]string{
	"First defense",
	"First defense",
	"Second defense",
	"Second defense",
	"Third defense",
	"Third defense",
	"Refused attackers",
	"Leftovers",
}

// PhaseOf returns the phase label of gameNo, "" if out of range.
func PhaseOf(gameNo int) string {
	if gameNo < 1 || gameNo > SlotCount {
		return ""
	}
	return Phases[gameNo-1]
}

// Verdict is the team result of a fully scored round.
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictLoss    Verdict = "Loss"
	VerdictDraw    Verdict = "Draw"
	VerdictWin     Verdict = "Win"
)

const (
	drawFloor   = 75
	drawCeiling = 85
	MaxTeamReal = SlotCount * MaxRealScore
)

// VerdictFor applies the team result rule. Anything short of 8 scored games
// is pending.
func VerdictFor(totalReal, realCount int) Verdict {
	if realCount != SlotCount {
		return VerdictPending
	}
	switch {
	case totalReal < drawFloor:
		return VerdictLoss
	case totalReal <= drawCeiling:
		return VerdictDraw
	default:
		return VerdictWin
	}
}

// Army is an opponent army as seen by the summary.
type Army struct {
	Faction string `json:"faction"`
	List    string `json:"list"`
}

// Lookup gives the summary access to the game's roster, armies and matrix.
type Lookup struct {
	Roster Roster
	Armies []Army
	Matrix matchup.Matrix
}

// Row is the summary of one filled slot.
type Row struct {
	GameNo        int                `json:"game_no"`
	Phase         string             `json:"phase"`
	PlayerID      int                `json:"player_id"`
	PlayerName    string             `json:"player_name"`
	ListLabel     string             `json:"list_label"`
	ArmyIndex     int                `json:"army_index"`
	Faction       string             `json:"faction"`
	Scenario      string             `json:"scenario"`
	ScenarioLabel string             `json:"scenario_label"`
	LayoutN       *int               `json:"layout_n"`
	State         matchup.State      `json:"state"`
	Descriptor    matchup.Descriptor `json:"descriptor"`
	Expected      *float64           `json:"expected"`
	RealScore     *int               `json:"real_score"`
	Delta         *float64           `json:"delta"`
}

// Summary aggregates a board.
type Summary struct {
	Rows        []Row   `json:"rows"`
	FilledCount int     `json:"filled_count"`
	RealCount   int     `json:"real_count"`
	TotalReal   int     `json:"total_real"`
	MaxReal     int     `json:"max_real"`
	Verdict     Verdict `json:"verdict"`
}

// Summarize derives per-slot expectations and the team totals. Real scores
// count towards the totals only on filled slots.
func Summarize(b *Board, lk Lookup) Summary {
	sum := Summary{Rows: []Row{}, MaxReal: MaxTeamReal}
	for _, s := range b.Slots() {
		if !s.Filled() {
			continue
		}
		row := summarizeSlot(s, b.Scenario(), lk)
		sum.Rows = append(sum.Rows, row)
		sum.FilledCount++
		if s.RealScore != nil {
			sum.RealCount++
			sum.TotalReal += *s.RealScore
		}
	}
	sum.Verdict = VerdictFor(sum.TotalReal, sum.RealCount)
	return sum
}

func summarizeSlot(s Slot, scenario string, lk Lookup) Row {
	pid, army := *s.PlayerID, *s.ArmyIndex
	state := lk.Matrix.Get(pid, army)
	row := Row{
		GameNo:        s.GameNo,
		Phase:         PhaseOf(s.GameNo),
		PlayerID:      pid,
		PlayerName:    DefaultPlayerName + " " + strconv.Itoa(pid),
		ListLabel:     NoDefaultListLabel,
		ArmyIndex:     army,
		Faction:       ArmyLabel(lk.Armies, army),
		Scenario:      scenario,
		ScenarioLabel: ScenarioLabel(scenario),
		LayoutN:       s.LayoutN,
		State:         state,
		Descriptor:    matchup.DescriptorOf(state),
		Expected:      matchup.ExpectedScorePtr(state),
		RealScore:     s.RealScore,
	}
	if ref, ok := lk.Roster.Find(pid); ok {
		row.PlayerName = ResolvePlayerName(ref)
		row.ListLabel = ResolveDefaultListLabel(ref)
	}
	row.Delta = Delta(s.RealScore, row.Expected)
	return row
}

// Delta is real - expected when both are known.
func Delta(real *int, expected *float64) *float64 {
	if real == nil || expected == nil {
		return nil
	}
	d := float64(*real) - *expected
	return &d
}

// ArmyLabel returns the faction of armies[idx], or "Army #n" when unnamed.
func ArmyLabel(armies []Army, idx int) string {
	if idx >= 0 && idx < len(armies) && armies[idx].Faction != "" {
		return armies[idx].Faction
	}
	return "Army #" + strconv.Itoa(idx+1)
}
