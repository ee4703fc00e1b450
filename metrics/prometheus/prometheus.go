package prometheusmetrics

import (
	"time"

	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	bridgeCalls           *prometheus.CounterVec
	bridgeCallTimer       *prometheus.HistogramVec
	adEvents              *prometheus.CounterVec
	eventStreamOpened     prometheus.Counter
	eventStreamClosed     prometheus.Counter
	eventStreamSubscribed prometheus.Gauge
	connectionsOpened     prometheus.Counter
	connectionsClosed     prometheus.Counter
	connectionsActive     prometheus.Gauge
}

const (
	operationLabel = "operation"
	statusLabel    = "status"
	formatLabel    = "format"
	eventTypeLabel = "event_type"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	bridgeTimeBuckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.bridgeCalls = newCounter(cfg, metrics.Registry,
		"bridge_calls",
		"Count of calls made across the native bridge labeled by operation and status.",
		[]string{operationLabel, statusLabel})

	metrics.bridgeCallTimer = newHistogramVec(cfg, metrics.Registry,
		"bridge_call_time_seconds",
		"Seconds to resolve successful bridge calls labeled by operation.",
		[]string{operationLabel},
		bridgeTimeBuckets)

	metrics.adEvents = newCounter(cfg, metrics.Registry,
		"ad_events",
		"Count of native ad events delivered labeled by ad format and event type.",
		[]string{formatLabel, eventTypeLabel})

	metrics.eventStreamOpened = newCounterWithoutLabels(cfg, metrics.Registry,
		"event_stream_opened",
		"Count of event stream subscriptions opened.")

	metrics.eventStreamClosed = newCounterWithoutLabels(cfg, metrics.Registry,
		"event_stream_closed",
		"Count of event stream subscriptions closed.")

	metrics.eventStreamSubscribed = newGauge(cfg, metrics.Registry,
		"event_stream_active",
		"Number of event stream subscriptions currently open.")

	metrics.connectionsOpened = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_opened",
		"Count of successful connections opened to the sandbox host.")

	metrics.connectionsClosed = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_closed",
		"Count of successful connections closed to the sandbox host.")

	metrics.connectionsActive = newGauge(cfg, metrics.Registry,
		"active_connections",
		"Current number of active connections to the sandbox host.")

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newGauge(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Gauge {
	opts := prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	gauge := prometheus.NewGauge(opts)
	registry.MustRegister(gauge)
	return gauge
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func (m *Metrics) RecordBridgeCall(labels metrics.BridgeLabels) {
	m.bridgeCalls.With(prometheus.Labels{
		operationLabel: string(labels.Operation),
		statusLabel:    string(labels.Status),
	}).Inc()
}

func (m *Metrics) RecordBridgeCallTime(labels metrics.BridgeLabels, length time.Duration) {
	if labels.Status == metrics.BridgeStatusOK {
		m.bridgeCallTimer.With(prometheus.Labels{
			operationLabel: string(labels.Operation),
		}).Observe(length.Seconds())
	}
}

func (m *Metrics) RecordAdEvent(format string, eventType string) {
	m.adEvents.With(prometheus.Labels{
		formatLabel:    format,
		eventTypeLabel: eventType,
	}).Inc()
}

func (m *Metrics) RecordEventStreamConnection(opened bool) {
	if opened {
		m.eventStreamOpened.Inc()
		m.eventStreamSubscribed.Inc()
	} else {
		m.eventStreamClosed.Inc()
		m.eventStreamSubscribed.Dec()
	}
}

func (m *Metrics) RecordNewConnection() {
	m.connectionsOpened.Inc()
	m.connectionsActive.Inc()
}

func (m *Metrics) RecordClosedConnection() {
	m.connectionsClosed.Inc()
	m.connectionsActive.Dec()
}
