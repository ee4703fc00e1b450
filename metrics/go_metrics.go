package metrics

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	metrics "github.com/rcrowley/go-metrics"
)

// Metrics is the legacy go-metrics implementation of MetricsEngine, reported through InfluxDB.
type Metrics struct {
	MetricsRegistry metrics.Registry

	BridgeCallMeter map[BridgeOperation]map[BridgeStatus]metrics.Meter
	BridgeCallTimer map[BridgeOperation]metrics.Timer

	EventStreamOpenedMeter metrics.Meter
	EventStreamClosedMeter metrics.Meter
	EventStreamActive      metrics.Counter

	ConnectionCounter     metrics.Counter
	ConnectionAcceptMeter metrics.Meter
	ConnectionCloseMeter  metrics.Meter
}

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
func NewBlankMetrics(registry metrics.Registry) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:        registry,
		BridgeCallMeter:        make(map[BridgeOperation]map[BridgeStatus]metrics.Meter),
		BridgeCallTimer:        make(map[BridgeOperation]metrics.Timer),
		EventStreamOpenedMeter: blankMeter,
		EventStreamClosedMeter: blankMeter,
		EventStreamActive:      metrics.NilCounter{},
		ConnectionCounter:      metrics.NilCounter{},
		ConnectionAcceptMeter:  blankMeter,
		ConnectionCloseMeter:   blankMeter,
	}
	for _, op := range BridgeOperations() {
		newMetrics.BridgeCallMeter[op] = make(map[BridgeStatus]metrics.Meter)
		for _, status := range BridgeStatuses() {
			newMetrics.BridgeCallMeter[op][status] = blankMeter
		}
		newMetrics.BridgeCallTimer[op] = &metrics.NilTimer{}
	}
	return newMetrics
}

// NewMetrics creates a new Metrics object with needed metrics defined. In time we may develop to the point
// where Metrics contains all the metrics we might want to record, and then we build the actual
// metrics object to contain only the metrics we are interested in.
func NewMetrics(registry metrics.Registry) *Metrics {
	newMetrics := NewBlankMetrics(registry)
	newMetrics.EventStreamOpenedMeter = metrics.GetOrRegisterMeter("event_stream.opened", registry)
	newMetrics.EventStreamClosedMeter = metrics.GetOrRegisterMeter("event_stream.closed", registry)
	newMetrics.EventStreamActive = metrics.GetOrRegisterCounter("event_stream.active", registry)
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptMeter = metrics.GetOrRegisterMeter("connection_accept", registry)
	newMetrics.ConnectionCloseMeter = metrics.GetOrRegisterMeter("connection_close", registry)

	for _, op := range BridgeOperations() {
		for _, status := range BridgeStatuses() {
			newMetrics.BridgeCallMeter[op][status] = metrics.GetOrRegisterMeter(fmt.Sprintf("bridge.%s.%s", op, status), registry)
		}
		newMetrics.BridgeCallTimer[op] = metrics.GetOrRegisterTimer(fmt.Sprintf("bridge.%s.call_time", op), registry)
	}
	return newMetrics
}

func (me *Metrics) RecordBridgeCall(labels BridgeLabels) {
	statuses, ok := me.BridgeCallMeter[labels.Operation]
	if !ok {
		glog.Errorf("Trying to log bridge call metrics for unknown operation %s", labels.Operation)
		return
	}
	if meter, ok := statuses[labels.Status]; ok {
		meter.Mark(1)
	}
}

func (me *Metrics) RecordBridgeCallTime(labels BridgeLabels, length time.Duration) {
	// Only successful calls are timed.
	if labels.Status != BridgeStatusOK {
		return
	}
	if timer, ok := me.BridgeCallTimer[labels.Operation]; ok {
		timer.Update(length)
	}
}

// RecordAdEvent registers meters lazily since event types come from the native side.
func (me *Metrics) RecordAdEvent(format string, eventType string) {
	metrics.GetOrRegisterMeter(fmt.Sprintf("ad_events.%s.%s", format, eventType), me.MetricsRegistry).Mark(1)
}

func (me *Metrics) RecordEventStreamConnection(opened bool) {
	if opened {
		me.EventStreamOpenedMeter.Mark(1)
		me.EventStreamActive.Inc(1)
	} else {
		me.EventStreamClosedMeter.Mark(1)
		me.EventStreamActive.Dec(1)
	}
}

func (me *Metrics) RecordNewConnection() {
	me.ConnectionCounter.Inc(1)
	me.ConnectionAcceptMeter.Mark(1)
}

func (me *Metrics) RecordClosedConnection() {
	me.ConnectionCounter.Dec(1)
	me.ConnectionCloseMeter.Mark(1)
}
