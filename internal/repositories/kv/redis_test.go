package kv

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis emulates the commands and the compare-and-set script in memory.
type fakeRedis struct {
	data    map[string][]byte
	failErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	f.data[key] = append([]byte(nil), toBytes(value)...)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.failErr != nil {
		return redis.NewIntResult(0, f.failErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if f.failErr != nil {
		return redis.NewCmdResult(nil, f.failErr)
	}
	if script != putIfScript || len(keys) != 1 || len(args) != 2 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected eval"))
	}
	cur := ""
	if v, ok := f.data[keys[0]]; ok {
		cur = versionOf(v)
	}
	if cur != args[0].(string) {
		return redis.NewCmdResult(int64(0), nil)
	}
	f.data[keys[0]] = append([]byte(nil), toBytes(args[1])...)
	return redis.NewCmdResult(int64(1), nil)
}

func toBytes(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	}
	return []byte(fmt.Sprint(v))
}

func TestRedisRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return NewRedisRepository(newFakeRedis(), "sp:")
	})
}

func TestRedisRepository_UsesPrefix(t *testing.T) {
	f := newFakeRedis()
	r := NewRedisRepository(f, "sp:")

	require.NoError(t, r.Put(context.Background(), "users", []byte("{}")))
	assert.Contains(t, f.data, "sp:users")
	assert.NotContains(t, f.data, "users")
}

func TestRedisRepository_VersionIsSHA1(t *testing.T) {
	f := newFakeRedis()
	r := NewRedisRepository(f, "")

	require.NoError(t, r.Put(context.Background(), "k", []byte("abc")))
	_, ver, err := r.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", ver)
}

func TestRedisRepository_Errors(t *testing.T) {
	f := newFakeRedis()
	f.failErr = errors.New("connection refused")
	r := NewRedisRepository(f, "")
	ctx := context.Background()

	_, _, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "connection refused")

	require.Error(t, r.Put(ctx, "k", []byte("v")))
	require.Error(t, r.Delete(ctx, "k"))

	err = r.PutIf(ctx, "k", []byte("v"), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrConflict)
}
