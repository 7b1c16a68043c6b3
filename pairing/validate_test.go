package pairing

import (
	"errors"
	"testing"
)

func ip(v int) *int { return &v }

func TestValidateAcceptsPartialPayload(t *testing.T) {
	sc := ScenarioHammerAnvil
	p := Payload{Scenario: &sc, Pairings: []Slot{
		{GameNo: 1, PlayerID: ip(1), ArmyIndex: ip(0), LayoutN: ip(1), RealScore: ip(12)},
		{GameNo: 2, PlayerID: ip(2), ArmyIndex: ip(1)},
		{GameNo: 3, LayoutN: ip(2)},
		{GameNo: 4},
	}}
	if err := Validate(p, testInventory()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	n := Normalize(p)
	if len(n.Pairings) != SlotCount || !n.Pairings[1].Filled() || n.Pairings[7].GameNo != 8 {
		t.Fatalf("normalized = %+v", n)
	}
}

func TestValidateRejects(t *testing.T) {
	sc := ScenarioHammerAnvil
	inv := testInventory()
	cases := []struct {
		name  string
		slots []Slot
		want  error
	}{
		{"game no", []Slot{{GameNo: 9}}, ErrInvalidGameNo},
		{"dup game", []Slot{{GameNo: 1}, {GameNo: 1}}, ErrDuplicateGameNo},
		{"dup player", []Slot{
			{GameNo: 1, PlayerID: ip(1), ArmyIndex: ip(0)},
			{GameNo: 2, PlayerID: ip(1), ArmyIndex: ip(1)},
		}, ErrDuplicatePlayer},
		{"dup army", []Slot{
			{GameNo: 1, PlayerID: ip(1), ArmyIndex: ip(0)},
			{GameNo: 2, PlayerID: ip(2), ArmyIndex: ip(0)},
		}, ErrDuplicateArmy},
		{"dup layout", []Slot{
			{GameNo: 1, LayoutN: ip(2)},
			{GameNo: 5, PlayerID: ip(2), ArmyIndex: ip(0), LayoutN: ip(2)},
		}, ErrDuplicateLayout},
		{"layout zero", []Slot{{GameNo: 1, LayoutN: ip(0)}}, ErrInvalidLayout},
		{"layout unknown", []Slot{{GameNo: 1, LayoutN: ip(40)}}, ErrUnknownLayout},
		{"score", []Slot{{GameNo: 1, RealScore: ip(21)}}, ErrRealScoreOutside},
		{"player", []Slot{{GameNo: 1, PlayerID: ip(0), ArmyIndex: ip(0)}}, ErrInvalidPlayer},
		{"army", []Slot{{GameNo: 1, PlayerID: ip(1), ArmyIndex: ip(-1)}}, ErrInvalidArmy},
		{"too many", make([]Slot, 9), ErrTooManySlots},
	}
	for _, c := range cases {
		err := Validate(Payload{Scenario: &sc, Pairings: c.slots}, inv)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: err=%v want %v", c.name, err, c.want)
		}
	}
}

func TestValidateScenarioRules(t *testing.T) {
	bogus := "NOPE"
	if err := Validate(Payload{Scenario: &bogus}, testInventory()); !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("err=%v", err)
	}
	if err := Validate(Payload{Pairings: []Slot{{GameNo: 1, LayoutN: ip(1)}}}, testInventory()); !errors.Is(err, ErrNoScenario) {
		t.Fatalf("err=%v", err)
	}
	// without an inventory any scenario and layout number is accepted
	if err := Validate(Payload{Scenario: &bogus, Pairings: []Slot{{GameNo: 1, LayoutN: ip(7)}}}, nil); err != nil {
		t.Fatalf("empty inventory: %v", err)
	}
}
