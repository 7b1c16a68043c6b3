package pairing

import (
	"errors"
	"fmt"
)

var (
	ErrTooManySlots     = errors.New("at most 8 pairings are allowed")
	ErrDuplicateGameNo  = errors.New("a game number is used more than once")
	ErrDuplicatePlayer  = errors.New("a player is used more than once")
	ErrDuplicateArmy    = errors.New("an opponent list is used more than once")
	ErrDuplicateLayout  = errors.New("a layout number is used more than once")
	ErrRealScoreOutside = errors.New("real_score must be between 0 and 20")
)

// Validate checks a payload submitted for persistence against the assignment
// invariants. Empty slots are allowed. A filled slot may omit its layout.
func Validate(p Payload, inv Inventory) error {
	if len(p.Pairings) > SlotCount {
		return ErrTooManySlots
	}
	scenario := ""
	if p.Scenario != nil {
		scenario = *p.Scenario
	}
	if scenario != "" && !inv.KnowsScenario(scenario) {
		return fmt.Errorf("%w: %s", ErrUnknownScenario, scenario)
	}

	games := map[int]bool{}
	players := map[int]bool{}
	armies := map[int]bool{}
	layouts := map[int]bool{}

	for _, s := range p.Pairings {
		if _, err := slotIndex(s.GameNo); err != nil {
			return err
		}
		if games[s.GameNo] {
			return ErrDuplicateGameNo
		}
		games[s.GameNo] = true

		if s.RealScore != nil && (*s.RealScore < MinRealScore || *s.RealScore > MaxRealScore) {
			return fmt.Errorf("game %d: %w", s.GameNo, ErrRealScoreOutside)
		}

		if s.LayoutN != nil {
			if *s.LayoutN <= 0 {
				return fmt.Errorf("game %d: %w", s.GameNo, ErrInvalidLayout)
			}
			if scenario == "" {
				return fmt.Errorf("game %d: %w", s.GameNo, ErrNoScenario)
			}
			if len(inv[scenario]) > 0 && !inv.Has(scenario, *s.LayoutN) {
				return fmt.Errorf("game %d: %w", s.GameNo, ErrUnknownLayout)
			}
			if layouts[*s.LayoutN] {
				return ErrDuplicateLayout
			}
			layouts[*s.LayoutN] = true
		}

		if !s.Filled() {
			continue
		}
		if *s.PlayerID <= 0 {
			return fmt.Errorf("game %d: %w", s.GameNo, ErrInvalidPlayer)
		}
		if *s.ArmyIndex < 0 {
			return fmt.Errorf("game %d: %w", s.GameNo, ErrInvalidArmy)
		}
		if players[*s.PlayerID] {
			return ErrDuplicatePlayer
		}
		if armies[*s.ArmyIndex] {
			return ErrDuplicateArmy
		}
		players[*s.PlayerID] = true
		armies[*s.ArmyIndex] = true
	}
	return nil
}

// Normalize expands a validated payload onto the canonical 8 slots.
func Normalize(p Payload) Payload {
	b := NewBoard(nil)
	b.load(p.Scenario, p.Pairings)
	return b.Payload()
}
