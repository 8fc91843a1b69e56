package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sessiontodo"

// Redis keeps values under a per-session key prefix. Every read and write
// pushes the expiry forward, so a session lasts until it has been idle for
// the TTL.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	quota  int64
}

// NewRedis connects lazily to the server in opts.
func NewRedis(opts RedisOptions, sessionID string, quota int64) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisWithClient(rdb, sessionID, opts.TTL, quota)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *redis.Client, sessionID string, ttl time.Duration, quota int64) *Redis {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &Redis{
		rdb:    rdb,
		prefix: fmt.Sprintf("%s:%s:", redisKeyPrefix, sessionID),
		ttl:    ttl,
		quota:  quota,
	}
}

// GetItem implements Storage.
func (r *Redis) GetItem(key string) (string, bool, error) {
	ctx := context.Background()
	var (
		v   string
		err error
	)
	if r.ttl > 0 {
		v, err = r.rdb.GetEx(ctx, r.key(key), r.ttl).Result()
	} else {
		v, err = r.rdb.Get(ctx, r.key(key)).Result()
	}
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	return v, true, nil
}

// SetItem implements Storage. The quota applies to the single item.
func (r *Redis) SetItem(key, value string) error {
	if need := itemSize(key, value); need > r.quota {
		return quotaError(need, r.quota)
	}
	if err := r.rdb.Set(context.Background(), r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// RemoveItem implements Storage.
func (r *Redis) RemoveItem(key string) error {
	if err := r.rdb.Del(context.Background(), r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Clear implements Storage by deleting every key under the session prefix.
func (r *Redis) Clear() error {
	ctx := context.Background()
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%w: del %s: %v", ErrUnavailable, iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan session: %v", ErrUnavailable, err)
	}
	return nil
}

// Close implements Storage.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}
