// models/player.go
package models

import (
	"strings"

	"team-pairing-system/pairing"

	"github.com/gosimple/unidecode"
	"gorm.io/datatypes"
)

// MaxActivePlayers is the size of the team fielded in one round.
const MaxActivePlayers = pairing.SlotCount

type Player struct {
	ID           int                          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string                       `json:"name" gorm:"not null"`
	SearchName   string                       `json:"-" gorm:"index"` // ascii-folded, lower-case
	Lists        datatypes.JSONType[[]string] `json:"lists"`
	DefaultIndex *int                         `json:"default_index"`
	Active       bool                         `json:"active"`

	Timestamps
}

// FoldName lower-cases and transliterates a name for search.
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(name)))
}

// ListTexts returns the army lists, never nil.
func (p *Player) ListTexts() []string {
	if l := p.Lists.Data(); l != nil {
		return l
	}
	return []string{}
}

// SetLists replaces the army lists.
func (p *Player) SetLists(lists []string) {
	p.Lists = datatypes.NewJSONType(lists)
}

// Live is the player as a roster reference.
func (p *Player) Live() pairing.LivePlayer {
	id := p.ID
	var def *int
	if p.DefaultIndex != nil {
		d := *p.DefaultIndex
		def = &d
	}
	return pairing.LivePlayer{
		ID:           &id,
		Name:         p.Name,
		Lists:        append([]string(nil), p.ListTexts()...),
		DefaultIndex: def,
		Active:       p.Active,
	}
}

// Snapshot freezes the player's name and default list.
func (p *Player) Snapshot() pairing.SnapshotPlayer {
	id := p.ID
	live := p.Live()
	return pairing.SnapshotPlayer{
		PlayerID:   &id,
		PlayerName: p.Name,
		ListText:   pairing.ResolveDefaultListText(live),
	}
}
