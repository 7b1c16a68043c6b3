// matchup/matrix.go
package matchup

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Key identifies one matrix cell.
type Key struct {
	PlayerID  int `json:"player_id"`
	ArmyIndex int `json:"army_index"`
}

// String renders the persisted form "<playerId>-<armyIndex>".
func (k Key) String() string {
	return strconv.Itoa(k.PlayerID) + "-" + strconv.Itoa(k.ArmyIndex)
}

// ParseKey is the inverse of Key.String.
func ParseKey(raw string) (Key, error) {
	pid, army, ok := strings.Cut(raw, "-")
	if !ok {
		return Key{}, fmt.Errorf("invalid matrix key %q", raw)
	}
	p, err := strconv.Atoi(pid)
	if err != nil {
		return Key{}, fmt.Errorf("invalid player id in matrix key %q: %w", raw, err)
	}
	a, err := strconv.Atoi(army)
	if err != nil {
		return Key{}, fmt.Errorf("invalid army index in matrix key %q: %w", raw, err)
	}
	return Key{PlayerID: p, ArmyIndex: a}, nil
}

// Entry is one recorded cell.
type Entry struct {
	Key
	Value State `json:"value"`
}

// Matrix maps player/army pairs to their recorded state. A missing key is NONE.
type Matrix map[Key]State

// MatrixFromMap builds a Matrix from its persisted string form. Keys or
// values that do not parse are skipped.
func MatrixFromMap(raw map[string]string) Matrix {
	m := make(Matrix, len(raw))
	for k, v := range raw {
		key, err := ParseKey(k)
		if err != nil {
			continue
		}
		if s, ok := Parse(v); ok && s.Persistable() {
			m[key] = s
		}
	}
	return m
}

// Get returns the state for (playerID, armyIndex), NONE when absent.
func (m Matrix) Get(playerID, armyIndex int) State {
	if s, ok := m[Key{PlayerID: playerID, ArmyIndex: armyIndex}]; ok {
		return s
	}
	return None
}

// Set stores s; NONE (or anything unknown) removes the key.
func (m Matrix) Set(playerID, armyIndex int, s State) {
	key := Key{PlayerID: playerID, ArmyIndex: armyIndex}
	if !s.Persistable() {
		delete(m, key)
		return
	}
	m[key] = s
}

// Cycle advances the cell to its next state and returns it.
func (m Matrix) Cycle(playerID, armyIndex int) State {
	next := Next(m.Get(playerID, armyIndex))
	m.Set(playerID, armyIndex, next)
	return next
}

// ToMap renders the persisted string form.
func (m Matrix) ToMap() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k.String()] = string(v)
	}
	return out
}

// Entries returns the recorded cells ordered by player then army.
func (m Matrix) Entries() []Entry {
	out := make([]Entry, 0, len(m))
	for k, v := range m {
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].ArmyIndex < out[j].ArmyIndex
	})
	return out
}
