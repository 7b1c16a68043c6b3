// models/game.go
package models

import (
	"time"

	"team-pairing-system/matchup"
	"team-pairing-system/pairing"

	"gorm.io/datatypes"
)

const MaxArmies = pairing.SlotCount

type Game struct {
	ID           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	OpponentName string `json:"opponent_name" gorm:"not null"`
	Slug         string `json:"slug" gorm:"index"`
	Comment      string `json:"comment"`

	// 🪖 Opponent armies, fixed at creation
	Armies datatypes.JSONType[[]pairing.Army] `json:"armies"`

	// 🎯 "playerId-armyIndex" -> state; NONE is never stored
	Matrix datatypes.JSONType[map[string]string] `json:"matrix"`

	// ⚔️ Saved pairings
	Scenario *string                            `json:"scenario"`
	Pairings datatypes.JSONType[[]pairing.Slot] `json:"pairings"`

	// 🔒 Frozen roster
	Roster         datatypes.JSONType[[]pairing.SnapshotPlayer] `json:"roster"`
	RosterLockedAt *time.Time                                   `json:"roster_locked_at"`

	Timestamps
}

// ArmyList returns the armies, never nil.
func (g *Game) ArmyList() []pairing.Army {
	if a := g.Armies.Data(); a != nil {
		return a
	}
	return []pairing.Army{}
}

// MatchupMatrix decodes the stored matrix.
func (g *Game) MatchupMatrix() matchup.Matrix {
	return matchup.MatrixFromMap(g.Matrix.Data())
}

// SetMatrix stores m.
func (g *Game) SetMatrix(m matchup.Matrix) {
	g.Matrix = datatypes.NewJSONType(m.ToMap())
}

// SavedPairings returns the stored payload.
func (g *Game) SavedPairings() pairing.Payload {
	slots := g.Pairings.Data()
	if slots == nil {
		slots = []pairing.Slot{}
	}
	return pairing.Payload{Scenario: g.Scenario, Pairings: slots}
}

// SetPairings stores p.
func (g *Game) SetPairings(p pairing.Payload) {
	g.Scenario = p.Scenario
	g.Pairings = datatypes.NewJSONType(p.Pairings)
}

// RosterLocked reports whether the roster was frozen.
func (g *Game) RosterLocked() bool {
	return g.RosterLockedAt != nil
}

// SnapshotRoster returns the frozen roster as player references.
func (g *Game) SnapshotRoster() pairing.Roster {
	var out pairing.Roster
	for _, s := range g.Roster.Data() {
		out = append(out, s)
	}
	return out
}
