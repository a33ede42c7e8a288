package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type snapshot struct {
	Active int    `json:"active"`
	Label  string `json:"label"`
}

func TestPutFetchRoundTrip(t *testing.T) {
	mock := newMockCmdable()
	store := newWithStore(mock, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, DashboardKey(), snapshot{Active: 12, Label: "Marzo"}))
	assert.Equal(t, time.Hour, mock.ttls["gymdesk:stats:dashboard"])

	var got snapshot
	found, err := store.Fetch(ctx, DashboardKey(), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot{Active: 12, Label: "Marzo"}, got)
}

func TestFetchMissingKey(t *testing.T) {
	store := newWithStore(newMockCmdable(), 0)

	var got snapshot
	found, err := store.Fetch(context.Background(), TrendKey(2025), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFetchCorruptSnapshot(t *testing.T) {
	mock := newMockCmdable()
	mock.data[DistributionKey()] = "{not json"
	store := newWithStore(mock, 0)

	var got []snapshot
	found, err := store.Fetch(context.Background(), DistributionKey(), &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	mock := newMockCmdable()
	store := newWithStore(mock, 0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, WeeklyKey(3, 2025), []int{1, 2}))
	require.NoError(t, store.Invalidate(ctx, WeeklyKey(3, 2025)))
	_, ok := mock.data[WeeklyKey(3, 2025)]
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "gymdesk:stats:trend:2025", TrendKey(2025))
	assert.Equal(t, "gymdesk:stats:weekly:2025-03", WeeklyKey(3, 2025))
	assert.Equal(t, "gymdesk:stats:compare:2025-02:2025-03", CompareKey(2, 3, 2025, 2025))
	assert.Equal(t, "gymdesk:a:b", Key("a", " ", "b"))
}

func TestNilStore(t *testing.T) {
	var store *SnapshotStore
	assert.Error(t, store.Put(context.Background(), "k", 1))
	assert.NoError(t, store.Close())
}
