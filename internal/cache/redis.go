package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "reviewlens:cache:"

// RedisOptions configures the Redis Store.
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

// Redis is a Store backed by a Redis server. Entries expire through Redis
// key TTLs.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	addr   string
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &Redis{
		client: client,
		ttl:    time.Duration(opts.TTLSeconds) * time.Second,
		addr:   opts.Addr,
	}, nil
}

// Get returns ("", false) on a miss or any Redis error.
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, redisKeyPrefix+HashKey(key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *Redis) Put(ctx context.Context, key, response string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+HashKey(key), response, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear deletes every key under the cache prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("deleting cache entries: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("deleting cache entries: %w", err)
		}
	}
	return nil
}

func (r *Redis) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: BackendRedis, Dir: r.addr}
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.StrLen(ctx, iter.Val()).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return stats, fmt.Errorf("reading cache entry size: %w", err)
		}
		stats.Entries++
		stats.TotalBytes += n
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("scanning cache keys: %w", err)
	}
	return stats, nil
}

func (r *Redis) Enabled() bool { return true }

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
