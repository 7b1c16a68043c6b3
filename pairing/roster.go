// pairing/roster.go
package pairing

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	NoDefaultListLabel = "No default list"
	DefaultPlayerName  = "Player"

	listLabelMax  = 40
	listLabelKeep = 37
)

// PlayerRef is either a live roster record or a frozen snapshot taken when
// a game's roster was locked.
type PlayerRef interface {
	playerRef()
}

// LivePlayer is the current roster record of a player.
type LivePlayer struct {
	ID           *int     `json:"id"`
	Name         string   `json:"name"`
	Lists        []string `json:"lists"`
	DefaultIndex *int     `json:"default_index"`
	Active       bool     `json:"active"`
}

// SnapshotPlayer is a player frozen at roster-lock time.
type SnapshotPlayer struct {
	PlayerID   *int   `json:"player_id"`
	PlayerName string `json:"player_name"`
	ListText   string `json:"list_text"`
}

func (LivePlayer) playerRef()     {}
func (SnapshotPlayer) playerRef() {}

// ResolvePlayerID returns the integer identity of ref. Callers must not
// pair a player for which ok is false.
func ResolvePlayerID(ref PlayerRef) (int, bool) {
	switch p := ref.(type) {
	case SnapshotPlayer:
		if p.PlayerID != nil {
			return *p.PlayerID, true
		}
	case *SnapshotPlayer:
		if p != nil && p.PlayerID != nil {
			return *p.PlayerID, true
		}
	case LivePlayer:
		if p.ID != nil {
			return *p.ID, true
		}
	case *LivePlayer:
		if p != nil && p.ID != nil {
			return *p.ID, true
		}
	}
	return 0, false
}

// ResolvePlayerName returns the display name of ref.
func ResolvePlayerName(ref PlayerRef) string {
	var name string
	switch p := ref.(type) {
	case SnapshotPlayer:
		name = p.PlayerName
	case *SnapshotPlayer:
		if p != nil {
			name = p.PlayerName
		}
	case LivePlayer:
		name = p.Name
	case *LivePlayer:
		if p != nil {
			name = p.Name
		}
	}
	if strings.TrimSpace(name) == "" {
		return DefaultPlayerName
	}
	return name
}

// ResolveDefaultListText returns the full text of the default list of ref.
func ResolveDefaultListText(ref PlayerRef) string {
	switch p := ref.(type) {
	case SnapshotPlayer:
		return p.ListText
	case *SnapshotPlayer:
		if p != nil {
			return p.ListText
		}
	case LivePlayer:
		return p.defaultList()
	case *LivePlayer:
		if p != nil {
			return p.defaultList()
		}
	}
	return ""
}

func (p LivePlayer) defaultList() string {
	if p.DefaultIndex == nil {
		return ""
	}
	idx := *p.DefaultIndex
	if idx < 0 || idx >= len(p.Lists) {
		return ""
	}
	return p.Lists[idx]
}

// ResolveDefaultListLabel returns a one-line label for the default list.
func ResolveDefaultListLabel(ref PlayerRef) string {
	if label, ok := ListLabel(ResolveDefaultListText(ref)); ok {
		return label
	}
	return NoDefaultListLabel
}

// ListLabel derives a label from list text: the first non-blank line,
// trimmed, cut to 37 characters plus "..." when longer than 40.
func ListLabel(text string) (string, bool) {
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > listLabelMax {
			line = string([]rune(line)[:listLabelKeep]) + "..."
		}
		return line, true
	}
	return "", false
}

// DecodePlayerRef decodes a roster record of either shape. A record carrying
// a "player_id" key is a snapshot.
func DecodePlayerRef(raw json.RawMessage) (PlayerRef, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["player_id"]; ok {
		var s SnapshotPlayer
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
	var l LivePlayer
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return l, nil
}

// Roster is an ordered set of player references.
type Roster []PlayerRef

// Find returns the reference whose identity is id.
func (r Roster) Find(id int) (PlayerRef, bool) {
	for _, ref := range r {
		if rid, ok := ResolvePlayerID(ref); ok && rid == id {
			return ref, true
		}
	}
	return nil, false
}

// FindByName returns the first reference whose display name equals name.
func (r Roster) FindByName(name string) (PlayerRef, bool) {
	for _, ref := range r {
		if strings.EqualFold(ResolvePlayerName(ref), strings.TrimSpace(name)) {
			return ref, true
		}
	}
	return nil, false
}
