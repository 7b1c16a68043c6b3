package pairing

import (
	"testing"

	"team-pairing-system/matchup"
)

func TestVerdictThresholds(t *testing.T) {
	cases := []struct {
		total int
		want  Verdict
	}{
		{74, VerdictLoss},
		{75, VerdictDraw},
		{85, VerdictDraw},
		{86, VerdictWin},
		{0, VerdictLoss},
		{160, VerdictWin},
	}
	for _, c := range cases {
		if got := VerdictFor(c.total, SlotCount); got != c.want {
			t.Fatalf("VerdictFor(%d) = %s want %s", c.total, got, c.want)
		}
	}
	if got := VerdictFor(100, 7); got != VerdictPending {
		t.Fatalf("7 scored games must be pending, got %s", got)
	}
}

func fullBoard(t *testing.T, scores [SlotCount]int) *Board {
	t.Helper()
	b := newTestBoard(t, ScenarioHammerAnvil)
	for i := 0; i < SlotCount; i++ {
		if err := b.Assign(i+1, i+1, i); err != nil {
			t.Fatalf("assign: %v", err)
		}
		v := scores[i]
		if err := b.SetRealScore(i+1, &v); err != nil {
			t.Fatalf("score: %v", err)
		}
	}
	return b
}

func TestSummarizeVerdictsForTotals(t *testing.T) {
	for total, want := range map[int]Verdict{74: VerdictLoss, 75: VerdictDraw, 85: VerdictDraw, 86: VerdictWin} {
		var scores [SlotCount]int
		rest := total
		for i := range scores {
			v := rest / (SlotCount - i)
			scores[i] = v
			rest -= v
		}
		sum := Summarize(fullBoard(t, scores), Lookup{})
		if sum.TotalReal != total || sum.RealCount != SlotCount || sum.FilledCount != SlotCount {
			t.Fatalf("totals %+v for %d", sum, total)
		}
		if sum.Verdict != want {
			t.Fatalf("total %d verdict %s want %s", total, sum.Verdict, want)
		}
	}
}

func TestSummarizeRows(t *testing.T) {
	b := newTestBoard(t, ScenarioHammerAnvil)
	_ = b.Assign(1, 7, 0)
	_ = b.Assign(3, 8, 1)
	_ = b.Assign(5, 9, 2)
	two := 2
	_ = b.SetLayout(1, &two)
	fourteen, nine := 14, 9
	_ = b.SetRealScore(1, &fourteen)
	_ = b.SetRealScore(5, &nine)
	// real score on an unfilled slot is not counted
	_ = b.SetRealScore(8, &nine)

	m := matchup.Matrix{}
	m.Set(7, 0, matchup.Win)
	m.Set(8, 1, matchup.Help)

	id7, id9 := 7, 9
	def := 0
	lk := Lookup{
		Roster: Roster{
			LivePlayer{ID: &id7, Name: "Anna", Lists: []string{"\n  Orks big list\nmore"}, DefaultIndex: &def},
			SnapshotPlayer{PlayerID: &id9, PlayerName: "Bert", ListText: ""},
		},
		Armies: []Army{{Faction: "Necrons"}, {Faction: ""}, {Faction: "Aeldari"}},
		Matrix: m,
	}
	sum := Summarize(b, lk)
	if len(sum.Rows) != 3 || sum.FilledCount != 3 {
		t.Fatalf("rows=%d filled=%d", len(sum.Rows), sum.FilledCount)
	}
	if sum.RealCount != 2 || sum.TotalReal != 23 || sum.Verdict != VerdictPending {
		t.Fatalf("totals %+v", sum)
	}

	r := sum.Rows[0]
	if r.PlayerName != "Anna" || r.ListLabel != "Orks big list" || r.Faction != "Necrons" {
		t.Fatalf("row 1 = %+v", r)
	}
	if r.Phase != "First defense" || r.ScenarioLabel != "Hammer and Anvil" || r.LayoutN == nil || *r.LayoutN != 2 {
		t.Fatalf("row 1 = %+v", r)
	}
	if r.Expected == nil || *r.Expected != 13.5 || r.Delta == nil || *r.Delta != 0.5 {
		t.Fatalf("row 1 expected/delta = %v/%v", r.Expected, r.Delta)
	}

	r = sum.Rows[1]
	if r.PlayerName != "Player 8" || r.ListLabel != NoDefaultListLabel || r.Faction != "Army #2" {
		t.Fatalf("row 2 = %+v", r)
	}
	if r.Expected == nil || *r.Expected != 3.0 || r.Delta != nil {
		t.Fatalf("row 2 expected/delta = %v/%v", r.Expected, r.Delta)
	}

	r = sum.Rows[2]
	if r.PlayerName != "Bert" || r.ListLabel != NoDefaultListLabel || r.State != matchup.None {
		t.Fatalf("row 3 = %+v", r)
	}
	if r.Expected != nil || r.Delta != nil {
		t.Fatalf("NONE matchup must have no expectation")
	}
}

func TestPhaseOf(t *testing.T) {
	if PhaseOf(7) != "Refused attackers" || PhaseOf(8) != "Leftovers" || PhaseOf(0) != "" {
		t.Fatalf("phases %q %q %q", PhaseOf(7), PhaseOf(8), PhaseOf(0))
	}
}
