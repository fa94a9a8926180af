package catalogcache

import (
	"context"
	"errors"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]string
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.values, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStoreTreatsNilReplyAsMiss(t *testing.T) {
	store, err := NewRedisStore(newFakeRedis())
	require.NoError(t, err)

	value, ok, err := store.Get(context.Background(), "catalog")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, err := NewRedisStore(newFakeRedis())
	require.NoError(t, err)

	payload := []byte(`{"version":"01HV"}`)
	require.NoError(t, store.Set(context.Background(), "catalog", payload, time.Minute))

	value, ok, err := store.Get(context.Background(), "catalog")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload, value)

	require.NoError(t, store.Delete(context.Background(), "catalog"))

	_, ok, err = store.Get(context.Background(), "catalog")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreSurfacesBackendErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection reset")

	store, err := NewRedisStore(fake)
	require.NoError(t, err)

	_, ok, err := store.Get(context.Background(), "catalog")
	require.Error(t, err)
	assert.False(t, ok)

	fake.setErr = errors.New("readonly replica")
	require.Error(t, store.Set(context.Background(), "catalog", []byte("x"), time.Minute))
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	_, err := NewRedisStore(nil)
	require.Error(t, err)
}
