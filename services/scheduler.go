package services

import (
	"context"
	"time"

	"team-pairing-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// StartRefreshScheduler rescans the layout source every interval. The caller
// shuts the returned scheduler down.
func (s *LayoutService) StartRefreshScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := s.Refresh(ctx); err != nil {
				utils.Log.WithError(err).Warn("[Scheduler] layout refresh failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	utils.Log.Infof("⏱️  [Scheduler] layout refresh every %s", interval)
	return sched, nil
}
