// pairing/board.go
package pairing

import (
	"context"
	"fmt"
)

// SlotCount is the number of games played in one team round.
const SlotCount = 8

const (
	MinRealScore = 0
	MaxRealScore = 20
)

// Slot is one of the 8 game positions. A nil field means "not chosen".
type Slot struct {
	GameNo    int  `json:"game_no"`
	PlayerID  *int `json:"player_id"`
	ArmyIndex *int `json:"army_index"`
	LayoutN   *int `json:"layout_n"`
	RealScore *int `json:"real_score"`
}

// Filled reports whether both a player and an army are assigned.
func (s Slot) Filled() bool {
	return s.PlayerID != nil && s.ArmyIndex != nil
}

func (s Slot) clone() Slot {
	return Slot{
		GameNo:    s.GameNo,
		PlayerID:  copyInt(s.PlayerID),
		ArmyIndex: copyInt(s.ArmyIndex),
		LayoutN:   copyInt(s.LayoutN),
		RealScore: copyInt(s.RealScore),
	}
}

// Payload is what gets persisted for a game.
type Payload struct {
	Scenario *string `json:"scenario"`
	Pairings []Slot  `json:"pairings"`
}

// Sink persists a payload. Implementations report failure through the error;
// the board keeps its edits when Save fails.
type Sink interface {
	SavePairings(ctx context.Context, p Payload) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, p Payload) error

func (f SinkFunc) SavePairings(ctx context.Context, p Payload) error { return f(ctx, p) }

// BoardState is the serializable form of a Board, used by draft stores.
type BoardState struct {
	Scenario *string `json:"scenario"`
	Pairings []Slot  `json:"pairings"`
	Dirty    bool    `json:"dirty"`
}

// Board holds the 8 slots of one game plus its scenario and dirty flag.
// It is not safe for concurrent use; callers own and serialize access.
type Board struct {
	slots    [SlotCount]Slot
	scenario string
	dirty    bool
	inv      Inventory
}

// NewBoard returns a clean board with 8 empty slots and no scenario.
func NewBoard(inv Inventory) *Board {
	b := &Board{inv: inv}
	b.slots = emptySlots()
	return b
}

// Restore rebuilds a board from its serialized state.
func Restore(st BoardState, inv Inventory) *Board {
	b := NewBoard(inv)
	b.load(st.Scenario, st.Pairings)
	b.dirty = st.Dirty
	return b
}

func emptySlots() [SlotCount]Slot {
	var out [SlotCount]Slot
	for i := range out {
		out[i] = Slot{GameNo: i + 1}
	}
	return out
}

// SetInventory replaces the layout inventory used for validation.
func (b *Board) SetInventory(inv Inventory) { b.inv = inv }

// Inventory returns the layout inventory in effect.
func (b *Board) Inventory() Inventory { return b.inv }

// Scenario returns the active scenario key, "" when none.
func (b *Board) Scenario() string { return b.scenario }

// Dirty reports whether the board has edits not yet saved.
func (b *Board) Dirty() bool { return b.dirty }

// Slots returns a copy of the 8 slots ordered by game number.
func (b *Board) Slots() []Slot {
	out := make([]Slot, SlotCount)
	for i, s := range b.slots {
		out[i] = s.clone()
	}
	return out
}

// Slot returns a copy of one slot.
func (b *Board) Slot(gameNo int) (Slot, error) {
	idx, err := slotIndex(gameNo)
	if err != nil {
		return Slot{}, err
	}
	return b.slots[idx].clone(), nil
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{scenario: b.scenario, dirty: b.dirty, inv: b.inv}
	for i, s := range b.slots {
		c.slots[i] = s.clone()
	}
	return c
}

// Batch runs fn against a copy of the board and commits the copy only when
// fn succeeds, so a multi-step edit applies entirely or not at all.
func (b *Board) Batch(fn func(*Board) error) error {
	c := b.Clone()
	if err := fn(c); err != nil {
		return err
	}
	*b = *c
	return nil
}

func slotIndex(gameNo int) (int, error) {
	if gameNo < 1 || gameNo > SlotCount {
		return 0, ErrInvalidGameNo
	}
	return gameNo - 1, nil
}

// Assign pairs playerID with armyIndex on game gameNo. Any other slot that
// holds the same player or the same army loses its player, army and real
// score; its layout number is kept.
func (b *Board) Assign(gameNo, playerID, armyIndex int) error {
	idx, err := slotIndex(gameNo)
	if err != nil {
		return err
	}
	if playerID <= 0 {
		return ErrInvalidPlayer
	}
	if armyIndex < 0 {
		return ErrInvalidArmy
	}
	if b.scenario == "" {
		return ErrNoScenario
	}

	for i := range b.slots {
		if i == idx {
			continue
		}
		s := &b.slots[i]
		if intEq(s.PlayerID, playerID) || intEq(s.ArmyIndex, armyIndex) {
			s.PlayerID = nil
			s.ArmyIndex = nil
			s.RealScore = nil
		}
	}

	b.slots[idx].PlayerID = intPtr(playerID)
	b.slots[idx].ArmyIndex = intPtr(armyIndex)
	b.dirty = true
	return nil
}

// AssignRef resolves the player reference before assigning. A reference
// without an integer identity blocks the assignment.
func (b *Board) AssignRef(gameNo int, ref PlayerRef, armyIndex int) error {
	id, ok := ResolvePlayerID(ref)
	if !ok {
		return ErrUnresolvedPlayer
	}
	return b.Assign(gameNo, id, armyIndex)
}

// SetLayout sets or clears (n == nil) the layout number of a slot.
func (b *Board) SetLayout(gameNo int, n *int) error {
	idx, err := slotIndex(gameNo)
	if err != nil {
		return err
	}
	if n == nil {
		b.slots[idx].LayoutN = nil
		b.dirty = true
		return nil
	}
	if *n <= 0 {
		return ErrInvalidLayout
	}
	if b.scenario == "" {
		return ErrNoScenario
	}
	if !b.inv.Has(b.scenario, *n) {
		return ErrUnknownLayout
	}
	for i, s := range b.slots {
		if i != idx && intEq(s.LayoutN, *n) {
			return ErrLayoutTaken
		}
	}
	b.slots[idx].LayoutN = intPtr(*n)
	b.dirty = true
	return nil
}

// ClearSlot empties one slot entirely.
func (b *Board) ClearSlot(gameNo int) error {
	idx, err := slotIndex(gameNo)
	if err != nil {
		return err
	}
	b.slots[idx] = Slot{GameNo: gameNo}
	b.dirty = true
	return nil
}

// ScenarioChangeImpact is the number of layout numbers SetScenario(next)
// would clear. Zero when the change is not destructive.
func (b *Board) ScenarioChangeImpact(next string) int {
	if !b.isDestructiveChange(next) {
		return 0
	}
	n := 0
	for _, s := range b.slots {
		if s.LayoutN != nil {
			n++
		}
	}
	return n
}

func (b *Board) isDestructiveChange(next string) bool {
	return b.scenario != "" && next != b.scenario
}

// SetScenario selects the scenario ("" for none). Leaving a set scenario,
// for another one or for none, clears every layout number and is refused
// unless confirm is set. Pairings and real scores are kept.
func (b *Board) SetScenario(next string, confirm bool) error {
	if next == b.scenario {
		return nil
	}
	if next != "" && !b.inv.KnowsScenario(next) {
		return fmt.Errorf("%w: %s", ErrUnknownScenario, next)
	}
	if b.isDestructiveChange(next) {
		if !confirm {
			return ErrConfirmationRequired
		}
		for i := range b.slots {
			b.slots[i].LayoutN = nil
		}
	}
	b.scenario = next
	b.dirty = true
	return nil
}

// SetRealScore records the score of a slot, clamped into [0,20]. nil clears.
func (b *Board) SetRealScore(gameNo int, v *int) error {
	idx, err := slotIndex(gameNo)
	if err != nil {
		return err
	}
	if v == nil {
		b.slots[idx].RealScore = nil
	} else {
		b.slots[idx].RealScore = intPtr(ClampScore(*v))
	}
	b.dirty = true
	return nil
}

// ClampScore forces v into the valid real score range.
func ClampScore(v int) int {
	if v < MinRealScore {
		return MinRealScore
	}
	if v > MaxRealScore {
		return MaxRealScore
	}
	return v
}

// Reset empties every slot and drops the scenario. The result must be saved.
func (b *Board) Reset() {
	b.slots = emptySlots()
	b.scenario = ""
	b.dirty = true
}

// LoadFromPersisted merges stored slots onto the canonical 1..8 template.
// Missing game numbers become empty slots, out-of-range ones are ignored.
func (b *Board) LoadFromPersisted(scenario *string, persisted []Slot) {
	b.load(scenario, persisted)
	b.dirty = false
}

func (b *Board) load(scenario *string, persisted []Slot) {
	b.slots = emptySlots()
	for _, p := range persisted {
		idx, err := slotIndex(p.GameNo)
		if err != nil {
			continue
		}
		s := p.clone()
		s.GameNo = p.GameNo
		b.slots[idx] = s
	}
	b.scenario = ""
	if scenario != nil {
		b.scenario = *scenario
	}
}

// UsedPlayers is the set of players in filled slots.
func (b *Board) UsedPlayers() map[int]bool {
	out := map[int]bool{}
	for _, s := range b.slots {
		if s.Filled() {
			out[*s.PlayerID] = true
		}
	}
	return out
}

// UsedArmies is the set of army indexes in filled slots.
func (b *Board) UsedArmies() map[int]bool {
	out := map[int]bool{}
	for _, s := range b.slots {
		if s.Filled() {
			out[*s.ArmyIndex] = true
		}
	}
	return out
}

// UsedLayouts is the set of layout numbers taken under scenario. Layouts
// are only tracked for the active scenario.
func (b *Board) UsedLayouts(scenario string) map[int]bool {
	out := map[int]bool{}
	if scenario == "" || scenario != b.scenario {
		return out
	}
	for _, s := range b.slots {
		if s.LayoutN != nil {
			out[*s.LayoutN] = true
		}
	}
	return out
}

// Available reports whether the pairing can be placed on gameNo without
// colliding with another filled slot.
func (b *Board) Available(gameNo, playerID, armyIndex int) bool {
	for _, s := range b.slots {
		if s.GameNo == gameNo || !s.Filled() {
			continue
		}
		if *s.PlayerID == playerID || *s.ArmyIndex == armyIndex {
			return false
		}
	}
	return true
}

// AvailableLayouts lists the layouts of the active scenario that gameNo may
// pick: free ones plus the one it already holds.
func (b *Board) AvailableLayouts(gameNo int) []Layout {
	out := []Layout{}
	if b.scenario == "" {
		return out
	}
	taken := map[int]bool{}
	for _, s := range b.slots {
		if s.GameNo != gameNo && s.LayoutN != nil {
			taken[*s.LayoutN] = true
		}
	}
	for _, l := range b.inv[b.scenario] {
		if !taken[l.N] {
			out = append(out, l)
		}
	}
	return out
}

// FilledCount is the number of filled slots.
func (b *Board) FilledCount() int {
	n := 0
	for _, s := range b.slots {
		if s.Filled() {
			n++
		}
	}
	return n
}

// Payload renders what a save would persist.
func (b *Board) Payload() Payload {
	var scenario *string
	if b.scenario != "" {
		sc := b.scenario
		scenario = &sc
	}
	return Payload{Scenario: scenario, Pairings: b.Slots()}
}

// State renders the board for draft storage.
func (b *Board) State() BoardState {
	p := b.Payload()
	return BoardState{Scenario: p.Scenario, Pairings: p.Pairings, Dirty: b.dirty}
}

// Save hands the board to sink. The dirty flag is cleared only when the sink
// succeeds; on failure every edit stays in place and Save may be retried.
func (b *Board) Save(ctx context.Context, sink Sink) error {
	if !b.dirty {
		return nil
	}
	if err := sink.SavePairings(ctx, b.Payload()); err != nil {
		return fmt.Errorf("save pairings: %w", err)
	}
	b.dirty = false
	return nil
}

func intPtr(v int) *int { return &v }

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intEq(p *int, v int) bool { return p != nil && *p == v }
