package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"team-pairing-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamInterval is how often a fight stream polls the draft store.
var StreamInterval = 2 * time.Second

type draftMark struct {
	version int64
	touched int64
}

// StreamFight pushes the board of a game as server-sent events whenever its
// draft changes, so several devices at the table stay in sync.
func (ps *PairingService) StreamFight(c *fiber.Ctx) error {
	game, err := findGame(c, ps.DB)
	if game == nil {
		return err
	}
	gameID := game.ID

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	// c is released once the handler returns, the writer must not touch it
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(StreamInterval)
		defer ticker.Stop()

		last := draftMark{version: -1}
		ctx := context.Background()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		push := func() bool {
			mark, err := ps.draftMark(ctx, gameID)
			if err != nil {
				utils.Log.WithError(err).WithField("game_id", gameID).Warn("⚠️  [STREAM] draft lookup failed")
				return true
			}
			if mark == last {
				return true
			}
			payload, err := ps.render(ctx, gameID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fmt.Fprint(w, "event: gone\ndata: {}\n\n")
				w.Flush()
				return false
			}
			if err != nil {
				utils.Log.WithError(err).WithField("game_id", gameID).Warn("⚠️  [STREAM] render failed")
				return true
			}
			last = mark
			fmt.Fprintf(w, "event: board\ndata: %s\n\n", payload)
			// client disconnected
			return w.Flush() == nil
		}

		if !push() {
			return
		}
		for {
			select {
			case <-ticker.C:
				// keepalive, a failed flush means the client is gone
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
				if !push() {
					return
				}
			case <-done:
				return
			}
		}
	})

	return nil
}

// draftMark identifies the current draft revision of a game. A game
// without draft has the zero mark.
func (ps *PairingService) draftMark(ctx context.Context, gameID int) (draftMark, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	d, ok, err := ps.Drafts.Get(ctx, gameID)
	if err != nil || !ok {
		return draftMark{}, err
	}
	return draftMark{version: d.Version, touched: d.TouchedAt.UnixNano()}, nil
}

// render builds the current board view of a game as JSON.
func (ps *PairingService) render(ctx context.Context, gameID int) ([]byte, error) {
	game, err := loadGame(ctx, ps.DB, gameID)
	if err != nil {
		return nil, err
	}
	env, err := ps.env(ctx, game)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	board, draft, err := ps.loadBoard(ctx, game)
	ps.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return json.Marshal(buildView(env, board, draft))
}
