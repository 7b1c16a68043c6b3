// services/draft_store.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"team-pairing-system/pairing"

	"github.com/redis/go-redis/v9"
)

// Draft is the unsaved working board of one game.
type Draft struct {
	GameID    int                `json:"game_id"`
	State     pairing.BoardState `json:"state"`
	Version   int64              `json:"version"`
	TouchedAt time.Time          `json:"touched_at"`
}

// DraftStore keeps drafts between requests.
type DraftStore interface {
	Get(ctx context.Context, gameID int) (*Draft, bool, error)
	Put(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, gameID int) error
	// EvictIdle drops clean drafts untouched since before cutoff. Dirty drafts
	// are kept regardless of age.
	EvictIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// MemoryDraftStore is the default process-local store.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[int]Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: map[int]Draft{}}
}

func (m *MemoryDraftStore) Get(_ context.Context, gameID int) (*Draft, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[gameID]
	if !ok {
		return nil, false, nil
	}
	cp := d
	cp.State = copyState(d.State)
	return &cp, true, nil
}

func (m *MemoryDraftStore) Put(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.State = copyState(d.State)
	m.drafts[d.GameID] = cp
	return nil
}

func (m *MemoryDraftStore) Delete(_ context.Context, gameID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, gameID)
	return nil
}

func (m *MemoryDraftStore) EvictIdle(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, d := range m.drafts {
		if !d.State.Dirty && d.TouchedAt.Before(cutoff) {
			delete(m.drafts, id)
			n++
		}
	}
	return n, nil
}

func copyState(st pairing.BoardState) pairing.BoardState {
	b := pairing.Restore(st, nil)
	return b.State()
}

const redisDraftPrefix = "pairing:draft:"

// RedisDraftStore shares drafts between service instances.
type RedisDraftStore struct {
	Client *redis.Client
}

// NewRedisDraftStore connects to url (redis://...) and pings it.
func NewRedisDraftStore(ctx context.Context, url string) (*RedisDraftStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisDraftStore{Client: client}, nil
}

func redisDraftKey(gameID int) string {
	return redisDraftPrefix + strconv.Itoa(gameID)
}

func (r *RedisDraftStore) Get(ctx context.Context, gameID int) (*Draft, bool, error) {
	raw, err := r.Client.Get(ctx, redisDraftKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get draft %d: %w", gameID, err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false, fmt.Errorf("decode draft %d: %w", gameID, err)
	}
	return &d, true, nil
}

func (r *RedisDraftStore) Put(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, redisDraftKey(d.GameID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis put draft %d: %w", d.GameID, err)
	}
	return nil
}

func (r *RedisDraftStore) Delete(ctx context.Context, gameID int) error {
	return r.Client.Del(ctx, redisDraftKey(gameID)).Err()
}

func (r *RedisDraftStore) EvictIdle(ctx context.Context, cutoff time.Time) (int, error) {
	n := 0
	iter := r.Client.Scan(ctx, 0, redisDraftPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.Atoi(strings.TrimPrefix(key, redisDraftPrefix))
		if err != nil {
			continue
		}
		d, ok, err := r.Get(ctx, id)
		if err != nil || !ok {
			continue
		}
		if d.State.Dirty || !d.TouchedAt.Before(cutoff) {
			continue
		}
		if err := r.Client.Del(ctx, key).Err(); err == nil {
			n++
		}
	}
	return n, iter.Err()
}

func (r *RedisDraftStore) Close() error {
	return r.Client.Close()
}
