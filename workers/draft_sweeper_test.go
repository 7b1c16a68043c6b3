package workers

import (
	"context"
	"testing"
	"time"

	"team-pairing-system/pairing"
	"team-pairing-system/services"
)

func TestSweepOnceKeepsDirtyDrafts(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryDraftStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := now.Add(-3 * time.Hour)
	fresh := now.Add(-10 * time.Minute)
	puts := []*services.Draft{
		{GameID: 1, State: pairing.BoardState{Dirty: false}, TouchedAt: old},
		{GameID: 2, State: pairing.BoardState{Dirty: true}, TouchedAt: old},
		{GameID: 3, State: pairing.BoardState{Dirty: false}, TouchedAt: fresh},
	}
	for _, d := range puts {
		if err := store.Put(ctx, d); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	s := NewDraftSweeper(store, 2*time.Hour)
	s.Now = func() time.Time { return now }

	n, err := s.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, ok, _ := store.Get(ctx, 1); ok {
		t.Fatalf("idle clean draft must be evicted")
	}
	if _, ok, _ := store.Get(ctx, 2); !ok {
		t.Fatalf("dirty draft must survive")
	}
	if _, ok, _ := store.Get(ctx, 3); !ok {
		t.Fatalf("recent draft must survive")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s := NewDraftSweeper(services.NewMemoryDraftStore(), time.Hour)
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
