package errtrack

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetCondition selects when a Store write is applied.
type SetCondition int

const (
	// SetAlways writes unconditionally.
	SetAlways SetCondition = iota
	// SetIfExists writes only if the key already exists (SET XX).
	SetIfExists
	// SetIfAbsent writes only if the key does not exist yet (SET NX).
	SetIfAbsent
)

// String returns the Redis flag name of the condition.
func (c SetCondition) String() string {
	switch c {
	case SetIfExists:
		return "XX"
	case SetIfAbsent:
		return "NX"
	default:
		return "ALWAYS"
	}
}

// Store is the whole-value key-value contract the Tracker needs.
// Implementations must not retry writes internally.
type Store interface {
	// Get returns the stored value; found is false if the key does not exist.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set writes value with ttl under cond. applied is false when cond rejected the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, cond SetCondition) (applied bool, err error)
	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Purger is implemented by stores that can remove every key matching a glob pattern.
type Purger interface {
	DeleteMatching(ctx context.Context, pattern string) (int64, error)
}

// RedisStore implements Store and Purger on an existing Redis client.
// It never closes the client; its lifecycle belongs to the caller.
type RedisStore struct {
	rdb       redis.UniversalClient
	scanCount int64
}

// NewRedisStore creates a Store backed by rdb.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb, scanCount: 256}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return b, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, cond SetCondition) (bool, error) {
	var (
		ok  bool
		err error
	)
	switch cond {
	case SetIfExists:
		ok, err = s.rdb.SetXX(ctx, key, value, ttl).Result()
	case SetIfAbsent:
		ok, err = s.rdb.SetNX(ctx, key, value, ttl).Result()
	default:
		err = s.rdb.Set(ctx, key, value, ttl).Err()
		ok = err == nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis SET %s %s: %w", cond, key, err)
	}
	return ok, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	return nil
}

// DeleteMatching implements Purger. Keys are found with SCAN and removed with
// pipelined UNLINKs. On a cluster client every master is swept.
func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	if cc, ok := s.rdb.(*redis.ClusterClient); ok {
		var total atomic.Int64
		err := cc.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
			n, err := sweep(ctx, c, pattern, s.scanCount)
			total.Add(n)
			return err
		})
		return total.Load(), err
	}
	return sweep(ctx, s.rdb, pattern, s.scanCount)
}

func sweep(ctx context.Context, c redis.Cmdable, pattern string, count int64) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := c.Scan(ctx, cursor, pattern, count).Result()
		if err != nil {
			return total, fmt.Errorf("redis SCAN %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			cmds, err := c.Pipelined(ctx, func(p redis.Pipeliner) error {
				for _, k := range keys {
					p.Unlink(ctx, k)
				}
				return nil
			})
			if err != nil {
				return total, fmt.Errorf("redis UNLINK: %w", err)
			}
			for _, cmd := range cmds {
				if ic, ok := cmd.(*redis.IntCmd); ok {
					total += ic.Val()
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}
