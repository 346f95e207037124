// Package idempotency guards the outbox relay against appending the same
// event to a stream twice when a row is re-polled after a successful XADD
// whose published mark did not commit.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OmkarVetal12/synlawn/pkg/redis"
)

// Guard records appended event ids per stream with SETNX and a TTL.
// Keys look like `synlawn:idempotency:evt:appended:<stream>:<event_id>`.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewGuard(store redis.IdempotencyStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

// Claim marks eventID as appended to stream. It reports false when an earlier
// claim already exists, meaning the append must be skipped.
func (g *Guard) Claim(ctx context.Context, stream, eventID string) (bool, error) {
	key, err := g.key(stream, eventID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
}

// Release drops a claim so a failed append can be retried.
func (g *Guard) Release(ctx context.Context, stream, eventID string) error {
	key, err := g.key(stream, eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(stream, eventID string) (string, error) {
	if stream == "" {
		return "", errors.New("stream is required")
	}
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(fmt.Sprintf("evt:appended:%s", stream), eventID), nil
}
