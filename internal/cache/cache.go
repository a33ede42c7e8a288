// Package cache keeps the last good dashboard statistics in Redis so the
// dashboard can still render when the backend is unreachable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "gymdesk"

// DefaultTTL is how long a snapshot survives without a refresh.
const DefaultTTL = 24 * time.Hour

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Options holds the connection settings.
type Options struct {
	Addr     string
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

// SnapshotStore saves and loads JSON snapshots.
type SnapshotStore struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, opts Options) (*SnapshotStore, error) {
	redisOpts, err := redisOptions(opts)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(redisOpts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &SnapshotStore{store: raw, raw: raw, ttl: ttlOrDefault(opts.TTL)}, nil
}

func newWithStore(store cmdable, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{store: store, ttl: ttlOrDefault(ttl)}
}

func redisOptions(opts Options) (*redis.Options, error) {
	if opts.URL == "" && opts.Addr == "" {
		return nil, errors.New("redis url or address is required")
	}
	if opts.URL != "" {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		return parsed, nil
	}
	return &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Put stores v as JSON under key.
func (s *SnapshotStore) Put(ctx context.Context, key string, v any) error {
	if s == nil || s.store == nil {
		return errors.New("redis client not initialized")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", key, err)
	}
	return s.store.Set(ctx, key, string(payload), s.ttl).Err()
}

// Fetch loads the snapshot at key into out. It returns false without error
// when no snapshot exists.
func (s *SnapshotStore) Fetch(ctx context.Context, key string, out any) (bool, error) {
	if s == nil || s.store == nil {
		return false, errors.New("redis client not initialized")
	}
	raw, err := s.store.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decoding snapshot %s: %w", key, err)
	}
	return true, nil
}

func (s *SnapshotStore) Invalidate(ctx context.Context, keys ...string) error {
	if s == nil || s.store == nil {
		return errors.New("redis client not initialized")
	}
	if len(keys) == 0 {
		return nil
	}
	return s.store.Del(ctx, keys...).Err()
}

// Ping checks the connection.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	if s == nil || s.store == nil {
		return errors.New("redis client not initialized")
	}
	return s.store.Ping(ctx).Err()
}

func (s *SnapshotStore) Close() error {
	if s == nil || s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

// Key builds a namespaced key such as "gymdesk:stats:trend:2025".
func Key(parts ...string) string {
	cleaned := make([]string, 0, len(parts)+1)
	cleaned = append(cleaned, keyNamespace)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ":")
}

// Stats keys.

func DashboardKey() string    { return Key("stats", "dashboard") }
func DistributionKey() string { return Key("stats", "distribution") }

func TrendKey(year int) string {
	return Key("stats", "trend", fmt.Sprint(year))
}

func WeeklyKey(month, year int) string {
	return Key("stats", "weekly", fmt.Sprintf("%04d-%02d", year, month))
}

func CompareKey(month1, month2, year1, year2 int) string {
	return Key("stats", "compare", fmt.Sprintf("%04d-%02d", year1, month1), fmt.Sprintf("%04d-%02d", year2, month2))
}
