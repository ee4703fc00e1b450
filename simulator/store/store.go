// Package store keeps the consent state of simulated devices between requests.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/consent"
)

// State is everything the consent SDK remembers for one device.
type State struct {
	Status         consent.Status         `json:"status"`
	StatusSet      bool                   `json:"statusSet"`
	InfoUpdated    bool                   `json:"infoUpdated"`
	PublisherIDs   []string               `json:"publisherIds,omitempty"`
	DebugGeography consent.DebugGeography `json:"debugGeography"`
	TagUnderAge    bool                   `json:"tagUnderAge"`
	TestDevices    []string               `json:"testDevices,omitempty"`
	PrefersAdFree  bool                   `json:"prefersAdFree"`
	MaxAdRating    string                 `json:"maxAdContentRating,omitempty"`
	ChildDirected  *bool                  `json:"tagForChildDirectedTreatment,omitempty"`
	TestDeviceIDs  []string               `json:"testDeviceIdentifiers,omitempty"`
}

// IsTestDevice reports whether deviceID was registered through AddTestDevices.
func (s State) IsTestDevice(deviceID string) bool {
	for _, id := range s.TestDevices {
		if id == deviceID {
			return true
		}
	}
	return false
}

// Store loads and saves device state. A device never seen before loads as the zero State.
type Store interface {
	Load(ctx context.Context, deviceID string) (State, error)
	Save(ctx context.Context, deviceID string, state State) error
}

var ErrNoDevice = errors.New("device id is required")

// New builds the store selected by cfg.Type.
func New(cfg config.Store) (Store, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		return NewRedisStore(cfg.Redis, ttl)
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.Type)
}
