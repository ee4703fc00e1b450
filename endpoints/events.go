package endpoints

import (
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"

	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/events"
	"github.com/prebid/prebid-mobileads/metrics"
)

// eventBuffer is how many events a slow stream reader may fall behind before events are dropped for it.
const eventBuffer = 256

// NewEventStreamEndpoint implements /v1/events. Every event emitted while the client stays connected is
// written as one line of JSON.
func NewEventStreamEndpoint(emitter *events.Emitter, metricsEngine metrics.MetricsEngine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Streaming is not supported by this connection")
			return
		}

		queue := make(chan events.Event, eventBuffer)
		unsubscribe := emitter.SubscribeAll(func(e events.Event) {
			select {
			case queue <- e:
			default:
				glog.Warningf("Event stream to %s is full. Dropping %q for %s", r.RemoteAddr, e.Type, e.InstanceID)
			}
		})
		defer unsubscribe()

		metricsEngine.RecordEventStreamConnection(true)
		defer metricsEngine.RecordEventStreamConnection(false)

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		// An empty line commits the headers through buffering middleware such as gzip. Readers skip it.
		if _, err := w.Write([]byte("\n")); err != nil {
			return
		}
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case e := <-queue:
				line, err := bridge.EncodeEvent(e)
				if err != nil {
					glog.Errorf("Failed to encode %q event for %s: %v", e.Type, e.InstanceID, err)
					continue
				}
				if _, err := w.Write(append(line, '\n')); err != nil {
					glog.V(1).Infof("Event stream to %s closed: %v", r.RemoteAddr, err)
					return
				}
				flusher.Flush()
			}
		}
	}
}
