package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryStore keeps state in process. A zero ttl keeps entries until the process exits.
func NewMemoryStore(ttl time.Duration) Store {
	expiry, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiry, cleanup = ttl, 2*ttl
	}
	return &memoryStore{
		cache: cache.New(expiry, cleanup),
		ttl:   expiry,
	}
}

func (s *memoryStore) Load(ctx context.Context, deviceID string) (State, error) {
	if deviceID == "" {
		return State{}, ErrNoDevice
	}
	if cached, ok := s.cache.Get(deviceID); ok {
		return cloneState(cached.(State)), nil
	}
	return State{}, nil
}

func (s *memoryStore) Save(ctx context.Context, deviceID string, state State) error {
	if deviceID == "" {
		return ErrNoDevice
	}
	s.cache.Set(deviceID, cloneState(state), s.ttl)
	return nil
}

// cloneState copies the slices so callers cannot mutate what the cache holds.
func cloneState(s State) State {
	s.PublisherIDs = append([]string(nil), s.PublisherIDs...)
	s.TestDevices = append([]string(nil), s.TestDevices...)
	s.TestDeviceIDs = append([]string(nil), s.TestDeviceIDs...)
	if s.ChildDirected != nil {
		v := *s.ChildDirected
		s.ChildDirected = &v
	}
	return s
}
