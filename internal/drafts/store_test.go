package drafts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/OmkarVetal12/synlawn/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data map[string]string
	ttl  time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = fmt.Sprint(value)
	f.ttl = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) DraftKey(scope string) string {
	return "drafts:" + scope
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewRedisStore(kv, 72*time.Hour)
	scope := Scope("hold", "Q-1")

	empty, err := store.Load(ctx, scope)
	require.NoError(t, err)
	require.Empty(t, empty)

	require.NoError(t, store.Merge(ctx, scope, map[string]decimal.Decimal{
		"PI1": dec("2.5"),
		"PI2": dec("7"),
	}))
	require.Equal(t, 72*time.Hour, kv.ttl)

	loaded, err := store.Load(ctx, scope)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.True(t, loaded["PI1"].Equal(dec("2.5")))

	require.NoError(t, store.Merge(ctx, scope, nil, "PI1", "PI2"))
	_, exists := kv.data[kv.DraftKey(scope)]
	require.False(t, exists, "removing every draft should delete the key")
}

func TestRedisStoreLoadErrors(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewRedisStore(kv, time.Hour)

	kv.data[kv.DraftKey("hold:Q-1")] = "not json"
	_, err := store.Load(ctx, "hold:Q-1")
	require.Error(t, err)

	kv.err = fmt.Errorf("connection refused")
	_, err = store.Load(ctx, "hold:Q-1")
	require.ErrorContains(t, err, "connection refused")
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	in := map[string]decimal.Decimal{"PI1": dec("1")}
	require.NoError(t, store.Merge(ctx, "consume:WO-1", in))
	in["PI1"] = dec("99")

	loaded, err := store.Load(ctx, "consume:WO-1")
	require.NoError(t, err)
	require.True(t, loaded["PI1"].Equal(dec("1")))

	require.NoError(t, store.Delete(ctx, "consume:WO-1"))
	loaded, err = store.Load(ctx, "consume:WO-1")
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestMergeKeepsOtherWritersDrafts(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(newFakeKV(), time.Hour),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			scope := Scope("hold", "Q-1")
			require.NoError(t, store.Merge(ctx, scope, map[string]decimal.Decimal{"PI1": dec("5")}))
			require.NoError(t, store.Merge(ctx, scope, map[string]decimal.Decimal{"PI2": dec("3")}))

			loaded, err := store.Load(ctx, scope)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			require.True(t, loaded["PI1"].Equal(dec("5")))
			require.True(t, loaded["PI2"].Equal(dec("3")))

			require.NoError(t, store.Merge(ctx, scope, map[string]decimal.Decimal{"PI2": dec("4")}, "PI1"))
			loaded, err = store.Load(ctx, scope)
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			require.True(t, loaded["PI2"].Equal(dec("4")))
		})
	}
}
