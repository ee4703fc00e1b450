package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/pointer"

	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/consent"
)

func TestMemoryStoreUnknownDeviceIsZero(t *testing.T) {
	s := NewMemoryStore(0)

	state, err := s.Load(context.Background(), "EMULATOR")

	require.NoError(t, err)
	assert.Equal(t, State{}, state)
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	saved := State{
		Status:        consent.StatusNonPersonalized,
		InfoUpdated:   true,
		PublisherIDs:  []string{"pub-1"},
		TestDevices:   []string{"EMULATOR"},
		ChildDirected: pointer.Bool(true),
	}

	require.NoError(t, s.Save(ctx, "EMULATOR", saved))
	loaded, err := s.Load(ctx, "EMULATOR")

	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	other, err := s.Load(ctx, "OTHER")
	require.NoError(t, err)
	assert.Equal(t, State{}, other)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	saved := State{TestDevices: []string{"A"}, ChildDirected: pointer.Bool(false)}
	require.NoError(t, s.Save(ctx, "d", saved))

	saved.TestDevices[0] = "mutated"
	*saved.ChildDirected = true
	loaded, err := s.Load(ctx, "d")
	require.NoError(t, err)
	loaded.TestDevices[0] = "mutated again"

	again, err := s.Load(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, again.TestDevices)
	assert.False(t, *again.ChildDirected)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10 * time.Millisecond)
	require.NoError(t, s.Save(ctx, "d", State{Status: consent.StatusPersonalized}))

	time.Sleep(30 * time.Millisecond)

	loaded, err := s.Load(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, consent.StatusUnknown, loaded.Status)
}

func TestEmptyDeviceID(t *testing.T) {
	s := NewMemoryStore(0)

	_, err := s.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.ErrorIs(t, s.Save(context.Background(), "", State{}), ErrNoDevice)
}

func TestIsTestDevice(t *testing.T) {
	state := State{TestDevices: []string{"EMULATOR", "33BE2250B43518CCDA7DE426D04EE231"}}

	assert.True(t, state.IsTestDevice("EMULATOR"))
	assert.False(t, state.IsTestDevice("emulator"))
}

func TestNew(t *testing.T) {
	memory, err := New(config.Store{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memoryStore{}, memory)

	redisStore, err := New(config.Store{Type: "redis", Redis: config.Redis{Addr: "localhost:6379", KeyPrefix: "k:"}})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, redisStore)
	assert.Equal(t, "k:EMULATOR", redisStore.(*RedisStore).key("EMULATOR"))
	assert.NoError(t, redisStore.(*RedisStore).Close())

	_, err = New(config.Store{Type: "redis"})
	assert.EqualError(t, err, "store.redis.addr is required when store.type is redis")

	_, err = New(config.Store{Type: "sqlite"})
	assert.EqualError(t, err, `unknown store type "sqlite"`)
}

func TestRedisStoreUnreachable(t *testing.T) {
	s, err := NewRedisStore(config.Redis{Addr: "127.0.0.1:1", TimeoutMS: 50}, 0)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(context.Background(), "EMULATOR")
	assert.ErrorContains(t, err, "redis get failed")

	err = s.Save(context.Background(), "EMULATOR", State{})
	assert.ErrorContains(t, err, "redis set failed")

	assert.Error(t, s.Ping(context.Background()))
}
