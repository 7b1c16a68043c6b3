package workers

import (
	"context"
	"time"

	"team-pairing-system/services"
	"team-pairing-system/utils"
)

// DraftSweeper evicts clean drafts that nobody touched for TTL.
type DraftSweeper struct {
	Store services.DraftStore
	TTL   time.Duration
	Now   func() time.Time
}

func NewDraftSweeper(store services.DraftStore, ttl time.Duration) *DraftSweeper {
	return &DraftSweeper{Store: store, TTL: ttl, Now: time.Now}
}

// SweepOnce runs a single eviction pass and returns the number of drafts removed.
func (s *DraftSweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.Now().UTC().Add(-s.TTL)
	return s.Store.EvictIdle(ctx, cutoff)
}

// Run sweeps every interval until ctx is cancelled.
func (s *DraftSweeper) Run(ctx context.Context, interval time.Duration) {
	utils.Log.Infof("🧹 [SWEEPER] started, ttl=%s every %s", s.TTL, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Log.Info("🧹 [SWEEPER] stopped")
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				utils.Log.WithError(err).Error("❌ [SWEEPER] eviction failed")
				continue
			}
			if n > 0 {
				utils.Log.Infof("🧹 [SWEEPER] evicted %d idle draft(s)", n)
			}
		}
	}
}
