package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"team-pairing-system/models"
	"team-pairing-system/pairing"
	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InventoryProvider hands out the current layout inventory.
type InventoryProvider interface {
	Inventory() pairing.Inventory
}

// PairingService runs the slot assignment engine over HTTP. Each game has at
// most one draft board; every draft mutation runs under mu.
type PairingService struct {
	DB        *gorm.DB
	Drafts    DraftStore
	Layouts   InventoryProvider
	Optimizer *OptimizerClient

	mu sync.Mutex
}

func NewPairingService(db *gorm.DB, drafts DraftStore, layouts InventoryProvider, optimizer *OptimizerClient) *PairingService {
	return &PairingService{DB: db, Drafts: drafts, Layouts: layouts, Optimizer: optimizer}
}

var (
	errNotInRoster    = errors.New("player is not in this game's roster")
	errArmyOutOfRange = errors.New("army index is out of range for this game")
)

// confirmError carries how many layouts a scenario switch would clear.
type confirmError struct {
	wouldClear int
}

func (e *confirmError) Error() string { return pairing.ErrConfirmationRequired.Error() }
func (e *confirmError) Unwrap() error { return pairing.ErrConfirmationRequired }

// fightEnv is the game context a board operation resolves against.
type fightEnv struct {
	game       *models.Game
	names      pairing.Roster // every player a slot may reference
	assignable pairing.Roster // players that may be newly assigned
	armies     []pairing.Army
}

func (ps *PairingService) env(ctx context.Context, game *models.Game) (*fightEnv, error) {
	names, err := nameRoster(ctx, ps.DB, game)
	if err != nil {
		return nil, err
	}
	return &fightEnv{
		game:       game,
		names:      names,
		assignable: assignableOnly(names),
		armies:     game.ArmyList(),
	}, nil
}

// assignableOnly keeps snapshots and active live players.
func assignableOnly(roster pairing.Roster) pairing.Roster {
	out := make(pairing.Roster, 0, len(roster))
	for _, ref := range roster {
		if live, ok := ref.(pairing.LivePlayer); ok && !live.Active {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func (ps *PairingService) inventory() pairing.Inventory {
	if ps.Layouts == nil {
		return nil
	}
	return ps.Layouts.Inventory()
}

// loadBoard returns the draft of game, or a clean board built from the
// persisted pairings when there is none.
func (ps *PairingService) loadBoard(ctx context.Context, game *models.Game) (*pairing.Board, *Draft, error) {
	inv := ps.inventory()
	d, ok, err := ps.Drafts.Get(ctx, game.ID)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return pairing.Restore(d.State, inv), d, nil
	}
	b := pairing.NewBoard(inv)
	saved := game.SavedPairings()
	b.LoadFromPersisted(saved.Scenario, saved.Pairings)
	return b, nil, nil
}

func (ps *PairingService) storeDraft(ctx context.Context, gameID int, b *pairing.Board, prev *Draft) (*Draft, error) {
	d := &Draft{GameID: gameID, State: b.State(), Version: 1, TouchedAt: time.Now().UTC()}
	if prev != nil {
		d.Version = prev.Version + 1
	}
	if err := ps.Drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// FightSlot is a slot decorated for display.
type FightSlot struct {
	pairing.Slot
	Phase            string `json:"phase"`
	AvailableLayouts []int  `json:"available_layouts"`
}

type usedSets struct {
	Players []int `json:"players"`
	Armies  []int `json:"armies"`
	Layouts []int `json:"layouts"`
}

// FightView is the full state of one game's pairing board.
type FightView struct {
	GameID        int              `json:"game_id"`
	OpponentName  string           `json:"opponent_name"`
	Scenario      string           `json:"scenario"`
	ScenarioLabel string           `json:"scenario_label"`
	Dirty         bool             `json:"dirty"`
	Version       int64            `json:"version"`
	Slots         []FightSlot      `json:"slots"`
	Summary       pairing.Summary  `json:"summary"`
	Used          usedSets         `json:"used"`
	Layouts       []pairing.Layout `json:"layouts"`
	Players       []MatrixPlayer   `json:"players"`
	Armies        []pairing.Army   `json:"armies"`
	RosterLocked  bool             `json:"roster_locked"`
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func buildView(env *fightEnv, b *pairing.Board, d *Draft) FightView {
	v := FightView{
		GameID:        env.game.ID,
		OpponentName:  env.game.OpponentName,
		Scenario:      b.Scenario(),
		ScenarioLabel: pairing.ScenarioLabel(b.Scenario()),
		Dirty:         b.Dirty(),
		Summary: pairing.Summarize(b, pairing.Lookup{
			Roster: env.names,
			Armies: env.armies,
			Matrix: env.game.MatchupMatrix(),
		}),
		Used: usedSets{
			Players: sortedKeys(b.UsedPlayers()),
			Armies:  sortedKeys(b.UsedArmies()),
			Layouts: sortedKeys(b.UsedLayouts(b.Scenario())),
		},
		Layouts:      []pairing.Layout{},
		Players:      rosterLines(env.assignable),
		Armies:       env.armies,
		RosterLocked: env.game.RosterLocked(),
	}
	if d != nil {
		v.Version = d.Version
	}
	if ls, ok := b.Inventory()[b.Scenario()]; ok {
		v.Layouts = ls
	}
	for _, s := range b.Slots() {
		avail := []int{}
		for _, l := range b.AvailableLayouts(s.GameNo) {
			avail = append(avail, l.N)
		}
		v.Slots = append(v.Slots, FightSlot{Slot: s, Phase: pairing.PhaseOf(s.GameNo), AvailableLayouts: avail})
	}
	return v
}

// GetFight returns the working board of a game.
func (ps *PairingService) GetFight(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	ctx := c.UserContext()

	ps.mu.Lock()
	board, draft, err := ps.loadBoard(ctx, game)
	ps.mu.Unlock()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load draft"})
	}
	env, err := ps.env(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	return c.JSON(buildView(env, board, draft))
}

// boardOp is one engine operation against a game's draft.
type boardOp func(b *pairing.Board, env *fightEnv) error

// mutate loads the draft, applies op atomically and stores the result. A
// failing op leaves the draft exactly as it was.
func (ps *PairingService) mutate(c *fiber.Ctx, op boardOp) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	ctx := c.UserContext()

	env, err := ps.env(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	board, prev, err := ps.loadBoard(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load draft"})
	}
	if err := board.Batch(func(b *pairing.Board) error { return op(b, env) }); err != nil {
		return engineError(c, err)
	}
	draft, err := ps.storeDraft(ctx, game.ID, board, prev)
	if err != nil {
		utils.Log.WithError(err).WithField("game_id", game.ID).Error("❌ [FIGHT] draft store failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store draft"})
	}
	return c.JSON(buildView(env, board, draft))
}

// assignOne resolves playerID against the assignable roster before pairing.
func assignOne(b *pairing.Board, env *fightEnv, gameNo, playerID, armyIndex int) error {
	if armyIndex >= len(env.armies) {
		return errArmyOutOfRange
	}
	ref, ok := env.assignable.Find(playerID)
	if !ok {
		return errNotInRoster
	}
	return b.AssignRef(gameNo, ref, armyIndex)
}

type assignRequest struct {
	GameNo    int  `json:"game_no" validate:"min=1,max=8"`
	PlayerID  *int `json:"player_id" validate:"required"`
	ArmyIndex *int `json:"army_index" validate:"required"`
}

func (ps *PairingService) Assign(c *fiber.Ctx) error {
	var req assignRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	return ps.mutate(c, func(b *pairing.Board, env *fightEnv) error {
		return assignOne(b, env, req.GameNo, *req.PlayerID, *req.ArmyIndex)
	})
}

type layoutRequest struct {
	GameNo  int  `json:"game_no" validate:"min=1,max=8"`
	LayoutN *int `json:"layout_n"`
}

func (ps *PairingService) SetLayout(c *fiber.Ctx) error {
	var req layoutRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	return ps.mutate(c, func(b *pairing.Board, _ *fightEnv) error {
		return b.SetLayout(req.GameNo, req.LayoutN)
	})
}

type slotRequest struct {
	GameNo int `json:"game_no" validate:"min=1,max=8"`
}

func (ps *PairingService) ClearSlot(c *fiber.Ctx) error {
	var req slotRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	return ps.mutate(c, func(b *pairing.Board, _ *fightEnv) error {
		return b.ClearSlot(req.GameNo)
	})
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
	Confirm  bool   `json:"confirm"`
}

// SetScenario switches the active scenario. A switch that would clear layout
// numbers answers 409 with would_clear until confirm is sent.
func (ps *PairingService) SetScenario(c *fiber.Ctx) error {
	var req scenarioRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	return ps.mutate(c, func(b *pairing.Board, _ *fightEnv) error {
		impact := b.ScenarioChangeImpact(req.Scenario)
		err := b.SetScenario(req.Scenario, req.Confirm)
		if errors.Is(err, pairing.ErrConfirmationRequired) {
			return &confirmError{wouldClear: impact}
		}
		return err
	})
}

type scoreRequest struct {
	GameNo    int  `json:"game_no" validate:"min=1,max=8"`
	RealScore *int `json:"real_score"`
}

func (ps *PairingService) SetScore(c *fiber.Ctx) error {
	var req scoreRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	return ps.mutate(c, func(b *pairing.Board, _ *fightEnv) error {
		return b.SetRealScore(req.GameNo, req.RealScore)
	})
}

func (ps *PairingService) Reset(c *fiber.Ctx) error {
	return ps.mutate(c, func(b *pairing.Board, _ *fightEnv) error {
		b.Reset()
		return nil
	})
}

type applyEntry struct {
	GameNo    int  `json:"game_no" validate:"min=1,max=8"`
	PlayerID  *int `json:"player_id" validate:"required"`
	ArmyIndex *int `json:"army_index" validate:"required"`
}

type applyRequest struct {
	Slots []applyEntry `json:"slots" validate:"required,min=1,max=8,dive"`
}

// Apply assigns several pairings at once, typically an optimizer solution.
// Either every pairing is applied or none is.
func (ps *PairingService) Apply(c *fiber.Ctx) error {
	var req applyRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	return ps.mutate(c, func(b *pairing.Board, env *fightEnv) error {
		for _, e := range req.Slots {
			if err := assignOne(b, env, e.GameNo, *e.PlayerID, *e.ArmyIndex); err != nil {
				return fmt.Errorf("game %d: %w", e.GameNo, err)
			}
		}
		return nil
	})
}

// Save persists the draft into the game. A failed save keeps the draft dirty
// so it can be retried.
func (ps *PairingService) Save(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	ctx := c.UserContext()
	env, err := ps.env(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	board, prev, err := ps.loadBoard(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load draft"})
	}
	if prev == nil {
		// nothing drafted, the persisted pairings are current
		return c.JSON(buildView(env, board, nil))
	}
	if err := board.Save(ctx, GameSink{DB: ps.DB, GameID: game.ID}); err != nil {
		utils.Log.WithError(err).WithField("game_id", game.ID).Error("❌ [FIGHT] save failed, draft kept")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save pairings", "dirty": true})
	}
	draft, err := ps.storeDraft(ctx, game.ID, board, prev)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "saved but failed to store draft"})
	}
	game.SetPairings(board.Payload())
	utils.Log.WithField("game_id", game.ID).Infof("💾 [FIGHT] saved %d pairings", board.FilledCount())
	return c.JSON(buildView(env, board, draft))
}

// Discard drops the draft and returns the persisted board.
func (ps *PairingService) Discard(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	ctx := c.UserContext()
	env, err := ps.env(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err := ps.Drafts.Delete(ctx, game.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to discard draft"})
	}
	board, _, err := ps.loadBoard(ctx, game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load pairings"})
	}
	return c.JSON(buildView(env, board, nil))
}

// GetPairings returns the persisted pairings on the canonical 8 slots.
func (ps *PairingService) GetPairings(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	return c.JSON(pairing.Normalize(game.SavedPairings()))
}

// SavePairings validates and stores a whole payload, bypassing the draft.
func (ps *PairingService) SavePairings(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	var req pairing.Payload
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if err := pairing.Validate(req, ps.inventory()); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	armies := len(game.ArmyList())
	for _, s := range req.Pairings {
		if s.ArmyIndex != nil && *s.ArmyIndex >= armies {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("game %d: %s", s.GameNo, errArmyOutOfRange)})
		}
	}
	payload := pairing.Normalize(req)
	ctx := c.UserContext()

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err := (GameSink{DB: ps.DB, GameID: game.ID}).SavePairings(ctx, payload); err != nil {
		utils.Log.WithError(err).WithField("game_id", game.ID).Error("❌ [PAIRINGS] save failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save pairings"})
	}
	// a clean draft would now shadow the new pairings
	if d, ok, err := ps.Drafts.Get(ctx, game.ID); err == nil && ok && !d.State.Dirty {
		_ = ps.Drafts.Delete(ctx, game.ID)
	}
	return c.JSON(fiber.Map{"status": "ok", "scenario": payload.Scenario, "pairings": payload.Pairings})
}

// Optimize asks the optimizer for ranked assignments of the game's roster.
func (ps *PairingService) Optimize(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	env, err := ps.env(c.UserContext(), game)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
	}

	players := []OptimizerPlayer{}
	for _, p := range rosterLines(env.assignable) {
		players = append(players, OptimizerPlayer{ID: p.ID, Name: p.Name})
	}
	solutions, err := ps.Optimizer.Optimize(c.UserContext(), OptimizeRequest{
		GameID:  game.ID,
		Players: players,
		Armies:  env.armies,
		Matrix:  game.MatchupMatrix().ToMap(),
	})
	if errors.Is(err, ErrOptimizerDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		utils.Log.WithError(err).WithField("game_id", game.ID).Warn("⚠️  [OPTIMIZER] call failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "optimizer unavailable"})
	}
	return c.JSON(fiber.Map{"solutions": solutions})
}
