package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OmkarVetal12/synlawn/pkg/redis"
	"github.com/shopspring/decimal"
)

// Store persists the draft set of one workflow scope (mode plus parent id).
// Several workflows may share a scope, so writes are merged per product item
// id: Merge sets the given drafts and drops the removed ids, leaving every
// other id in the scope untouched.
type Store interface {
	Load(ctx context.Context, scope string) (map[string]decimal.Decimal, error)
	Merge(ctx context.Context, scope string, upserts map[string]decimal.Decimal, removed ...string) error
	Delete(ctx context.Context, scope string) error
}

// Scope builds the persistence key for a workflow's drafts.
func Scope(mode, parentID string) string {
	return mode + ":" + parentID
}

// MemoryStore keeps drafts in process.
type MemoryStore struct {
	mu     sync.Mutex
	scopes map[string]map[string]decimal.Decimal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: map[string]map[string]decimal.Decimal{}}
}

func (m *MemoryStore) Load(_ context.Context, scope string) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyDrafts(m.scopes[scope]), nil
}

func (m *MemoryStore) Merge(_ context.Context, scope string, upserts map[string]decimal.Decimal, removed ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged := mergeDrafts(m.scopes[scope], upserts, removed)
	if len(merged) == 0 {
		delete(m.scopes, scope)
		return nil
	}
	m.scopes[scope] = merged
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes, scope)
	return nil
}

// RedisStore keeps each scope's drafts as one JSON document with a TTL.
// Merges are read-modify-write and serialised within the process.
type RedisStore struct {
	mu  sync.Mutex
	kv  redis.KV
	ttl time.Duration
}

func NewRedisStore(kv redis.KV, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, scope string) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, scope)
}

func (s *RedisStore) load(ctx context.Context, scope string) (map[string]decimal.Decimal, error) {
	raw, err := s.kv.Get(ctx, s.kv.DraftKey(scope))
	if errors.Is(err, redis.Nil) {
		return map[string]decimal.Decimal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	out := map[string]decimal.Decimal{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode drafts: %w", err)
	}
	return out, nil
}

func (s *RedisStore) Merge(ctx context.Context, scope string, upserts map[string]decimal.Decimal, removed ...string) error {
	if len(upserts) == 0 && len(removed) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load(ctx, scope)
	if err != nil {
		return err
	}
	merged := mergeDrafts(current, upserts, removed)
	if len(merged) == 0 {
		return s.delete(ctx, scope)
	}
	payload, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode drafts: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.DraftKey(scope), string(payload), s.ttl); err != nil {
		return fmt.Errorf("save drafts: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, scope)
}

func (s *RedisStore) delete(ctx context.Context, scope string) error {
	if err := s.kv.Del(ctx, s.kv.DraftKey(scope)); err != nil {
		return fmt.Errorf("delete drafts: %w", err)
	}
	return nil
}

func mergeDrafts(current, upserts map[string]decimal.Decimal, removed []string) map[string]decimal.Decimal {
	out := copyDrafts(current)
	for id, qty := range upserts {
		out[id] = qty
	}
	for _, id := range removed {
		delete(out, id)
	}
	return out
}

func copyDrafts(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for id, qty := range in {
		out[id] = qty
	}
	return out
}
