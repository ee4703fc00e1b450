package config

import (
	"time"

	"github.com/golang/glog"
	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/metrics"
	prometheusmetrics "github.com/prebid/prebid-mobileads/metrics/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
	influxdb "github.com/vrischmann/go-metrics-influxdb"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.Influxdb.Host != "" {
		// Currently use go-metrics as the metrics piece for influx
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry("mobileads."))
		engineList = append(engineList, returnEngine.GoMetrics)
		// Set up the Influx logger
		go influxdb.InfluxDB(
			returnEngine.GoMetrics.MetricsRegistry,                             // metrics registry
			time.Second*time.Duration(cfg.Metrics.Influxdb.MetricSendInterval), // Configurable interval
			cfg.Metrics.Influxdb.Host,                                          // the InfluxDB url
			cfg.Metrics.Influxdb.Database,                                      // your InfluxDB database
			cfg.Metrics.Influxdb.Username,                                      // your InfluxDB user
			cfg.Metrics.Influxdb.Password,                                      // your InfluxDB password,
		)
		glog.Infof("Reporting go-metrics to InfluxDB at %s every %ds", cfg.Metrics.Influxdb.Host, cfg.Metrics.Influxdb.MetricSendInterval)
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		// Set up the Prometheus metrics.
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &DummyMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordBridgeCall across all engines
func (me *MultiMetricsEngine) RecordBridgeCall(labels metrics.BridgeLabels) {
	for _, thisME := range *me {
		thisME.RecordBridgeCall(labels)
	}
}

// RecordBridgeCallTime across all engines
func (me *MultiMetricsEngine) RecordBridgeCallTime(labels metrics.BridgeLabels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordBridgeCallTime(labels, length)
	}
}

// RecordAdEvent across all engines
func (me *MultiMetricsEngine) RecordAdEvent(format string, eventType string) {
	for _, thisME := range *me {
		thisME.RecordAdEvent(format, eventType)
	}
}

// RecordEventStreamConnection across all engines
func (me *MultiMetricsEngine) RecordEventStreamConnection(opened bool) {
	for _, thisME := range *me {
		thisME.RecordEventStreamConnection(opened)
	}
}

// RecordNewConnection across all engines
func (me *MultiMetricsEngine) RecordNewConnection() {
	for _, thisME := range *me {
		thisME.RecordNewConnection()
	}
}

// RecordClosedConnection across all engines
func (me *MultiMetricsEngine) RecordClosedConnection() {
	for _, thisME := range *me {
		thisME.RecordClosedConnection()
	}
}

// DummyMetricsEngine is a Noop metrics engine in case no metrics are configured. (may also be useful for tests)
type DummyMetricsEngine struct{}

// RecordBridgeCall as a noop
func (me *DummyMetricsEngine) RecordBridgeCall(labels metrics.BridgeLabels) {
}

// RecordBridgeCallTime as a noop
func (me *DummyMetricsEngine) RecordBridgeCallTime(labels metrics.BridgeLabels, length time.Duration) {
}

// RecordAdEvent as a noop
func (me *DummyMetricsEngine) RecordAdEvent(format string, eventType string) {
}

// RecordEventStreamConnection as a noop
func (me *DummyMetricsEngine) RecordEventStreamConnection(opened bool) {
}

// RecordNewConnection as a noop
func (me *DummyMetricsEngine) RecordNewConnection() {
}

// RecordClosedConnection as a noop
func (me *DummyMetricsEngine) RecordClosedConnection() {
}
