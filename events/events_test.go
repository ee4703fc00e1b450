package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitDeliversInRegistrationOrder(t *testing.T) {
	emitter := NewEmitter()
	var got []string

	emitter.Subscribe("ad-1", func(e Event) { got = append(got, "first:"+e.Type) })
	emitter.Subscribe("ad-1", func(e Event) { got = append(got, "second:"+e.Type) })
	emitter.Subscribe("ad-2", func(e Event) { got = append(got, "other:"+e.Type) })

	delivered := emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []string{"first:loaded", "second:loaded"}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	emitter := NewEmitter()
	calls := 0

	unsubscribe := emitter.Subscribe("ad-1", func(Event) { calls++ })
	emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})
	unsubscribe()
	emitter.Emit(Event{InstanceID: "ad-1", Type: "opened"})
	emitter.Emit(Event{InstanceID: "ad-1", Type: "closed"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, emitter.ListenerCount("ad-1"))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	emitter := NewEmitter()
	unsubscribe := emitter.Subscribe("ad-1", func(Event) {})
	emitter.Subscribe("ad-1", func(Event) {})

	unsubscribe()
	unsubscribe()

	assert.Equal(t, 1, emitter.ListenerCount("ad-1"))
}

func TestUnsubscribeDuringDeliverySkipsLaterListener(t *testing.T) {
	emitter := NewEmitter()
	secondCalls := 0
	var unsubscribeSecond func()

	emitter.Subscribe("ad-1", func(Event) { unsubscribeSecond() })
	unsubscribeSecond = emitter.Subscribe("ad-1", func(Event) { secondCalls++ })

	delivered := emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 0, secondCalls)
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	emitter := NewEmitter()
	calls := 0
	var unsubscribe func()
	unsubscribe = emitter.Subscribe("ad-1", func(Event) {
		calls++
		unsubscribe()
	})

	emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})
	emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})

	assert.Equal(t, 1, calls)
}

func TestEmitWithoutListeners(t *testing.T) {
	assert.Equal(t, 0, NewEmitter().Emit(Event{InstanceID: "nobody", Type: "loaded"}))
}

func TestRemoveAll(t *testing.T) {
	emitter := NewEmitter()
	calls := 0
	emitter.Subscribe("ad-1", func(Event) { calls++ })
	emitter.Subscribe("ad-1", func(Event) { calls++ })

	emitter.RemoveAll("ad-1")
	emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, emitter.ListenerCount("ad-1"))
}

func TestConcurrentSubscribeAndEmit(t *testing.T) {
	emitter := NewEmitter()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsubscribe := emitter.Subscribe("ad-1", func(Event) {})
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, emitter.ListenerCount("ad-1"))
}

func TestSubscribeAll(t *testing.T) {
	emitter := NewEmitter()
	var got []string

	unsubscribeAll := emitter.SubscribeAll(func(e Event) { got = append(got, "all:"+e.InstanceID) })
	emitter.Subscribe("ad-1", func(e Event) { got = append(got, "one:"+e.InstanceID) })

	emitter.Emit(Event{InstanceID: "ad-1", Type: "loaded"})
	emitter.Emit(Event{InstanceID: "ad-2", Type: "loaded"})
	unsubscribeAll()
	emitter.Emit(Event{InstanceID: "ad-2", Type: "closed"})

	assert.Equal(t, []string{"one:ad-1", "all:ad-1", "all:ad-2"}, got)
}
