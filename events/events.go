// Package events fans native ad lifecycle events out to the listeners registered for each ad instance.
package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// Event is one lifecycle notification emitted by the native layer for a single ad instance.
type Event struct {
	InstanceID string `json:"instanceId"`
	AdUnitID   string `json:"adUnitId"`
	RequestID  int    `json:"requestId"`
	// Format is interstitial, rewarded or banner. Informational only.
	Format string          `json:"format,omitempty"`
	Type   string          `json:"type"`
	Error  error           `json:"-"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Listener receives events for the instance it was registered against.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
	active   atomic.Bool
}

// Emitter is a multi-subscriber registry keyed by ad instance identity.
//
// Listeners run synchronously on the goroutine calling Emit, in registration order. Once the
// function returned by Subscribe has been called the listener is skipped by every later delivery,
// including deliveries already iterating over the instance's listeners.
type Emitter struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]*subscription
	all    []*subscription
}

func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[string][]*subscription),
	}
}

// Subscribe registers listener for events addressed to instanceID and returns its unsubscribe handle.
// The handle is idempotent.
func (e *Emitter) Subscribe(instanceID string, listener Listener) func() {
	e.mu.Lock()
	e.nextID++
	sub := &subscription{id: e.nextID, listener: listener}
	sub.active.Store(true)
	e.subs[instanceID] = append(e.subs[instanceID], sub)
	e.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		e.remove(instanceID, sub.id)
	}
}

// SubscribeAll registers listener for the events of every instance. It runs after the instance listeners.
func (e *Emitter) SubscribeAll(listener Listener) func() {
	e.mu.Lock()
	e.nextID++
	sub := &subscription{id: e.nextID, listener: listener}
	sub.active.Store(true)
	e.all = append(e.all, sub)
	e.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		e.mu.Lock()
		e.all = without(e.all, sub.id)
		e.mu.Unlock()
	}
}

func (e *Emitter) remove(instanceID string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := without(e.subs[instanceID], id)
	if len(kept) == 0 {
		delete(e.subs, instanceID)
		return
	}
	e.subs[instanceID] = kept
}

func without(subs []*subscription, id uint64) []*subscription {
	kept := make([]*subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.id != id {
			kept = append(kept, sub)
		}
	}
	return kept
}

// Emit delivers event to every active listener of event.InstanceID, then to the SubscribeAll listeners, and
// returns how many were invoked.
func (e *Emitter) Emit(event Event) int {
	e.mu.RLock()
	instanceSubs := e.subs[event.InstanceID]
	snapshot := make([]*subscription, 0, len(instanceSubs)+len(e.all))
	snapshot = append(snapshot, instanceSubs...)
	snapshot = append(snapshot, e.all...)
	e.mu.RUnlock()

	if len(snapshot) == 0 {
		glog.V(2).Infof("Dropping %q event for instance %s: no listeners", event.Type, event.InstanceID)
		return 0
	}

	delivered := 0
	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		sub.listener(event)
		delivered++
	}
	return delivered
}

// ListenerCount returns the number of active listeners for instanceID.
func (e *Emitter) ListenerCount(instanceID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[instanceID])
}

// RemoveAll drops every listener registered for instanceID.
func (e *Emitter) RemoveAll(instanceID string) {
	e.mu.Lock()
	subs := e.subs[instanceID]
	delete(e.subs, instanceID)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.active.Store(false)
	}
}
