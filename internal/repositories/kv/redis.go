package kv

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/redis/go-redis/v9"
)

// putIfScript swaps the value only when the SHA-1 of the stored value still
// matches ARGV[1]; a missing key matches the empty string.
const putIfScript = `
local cur = redis.call('GET', KEYS[1])
local ver = ''
if cur then ver = redis.sha1hex(cur) end
if ver ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`

// redisClient is the part of *redis.Client the repository uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// RedisRepository stores each pair as a plain string key named
// prefix+key. The version of a value is its SHA-1, hex encoded.
type RedisRepository struct {
	client redisClient
	prefix string
}

func NewRedisRepository(client redisClient, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, versionOf(value), nil
}

func (r *RedisRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) PutIf(ctx context.Context, key string, value []byte, version string) error {
	ok, err := r.client.Eval(ctx, putIfScript, []string{r.prefix + key}, version, value).Int64()
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	if ok == 0 {
		return fmt.Errorf("kv[%s] changed since version %q: %w", key, version, common.ErrConflict)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

func versionOf(value []byte) string {
	sum := sha1.Sum(value)
	return hex.EncodeToString(sum[:])
}
