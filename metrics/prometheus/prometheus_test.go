package prometheusmetrics

import (
	"testing"
	"time"

	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMetricsForTesting() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Port:      8080,
		Namespace: "mobileads",
		Subsystem: "sandbox",
	})
}

func TestMetricCountGatekeeping(t *testing.T) {
	m := createMetricsForTesting()

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "mobileads_sandbox_bridge_calls")
	assert.Contains(t, names, "mobileads_sandbox_bridge_call_time_seconds")
	assert.Contains(t, names, "mobileads_sandbox_event_stream_opened")

	// Preloaded label permutations for every operation and status.
	assert.Equal(t, len(metrics.BridgeOperations())*len(metrics.BridgeStatuses()), testutil.CollectAndCount(m.bridgeCalls))
}

func TestRecordBridgeCall(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordBridgeCall(metrics.BridgeLabels{Operation: metrics.OpShowForm, Status: metrics.BridgeStatusOK})
	m.RecordBridgeCall(metrics.BridgeLabels{Operation: metrics.OpShowForm, Status: metrics.BridgeStatusOK})
	m.RecordBridgeCall(metrics.BridgeLabels{Operation: metrics.OpShowForm, Status: metrics.BridgeStatusCanceled})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bridgeCalls.With(prometheus.Labels{
		operationLabel: string(metrics.OpShowForm),
		statusLabel:    string(metrics.BridgeStatusOK),
	})))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bridgeCalls.With(prometheus.Labels{
		operationLabel: string(metrics.OpShowForm),
		statusLabel:    string(metrics.BridgeStatusCanceled),
	})))
}

func TestRecordBridgeCallTime(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordBridgeCallTime(metrics.BridgeLabels{Operation: metrics.OpLoadAd, Status: metrics.BridgeStatusOK}, 30*time.Millisecond)
	m.RecordBridgeCallTime(metrics.BridgeLabels{Operation: metrics.OpLoadAd, Status: metrics.BridgeStatusErr}, 30*time.Millisecond)

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "mobileads_sandbox_bridge_call_time_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == operationLabel && label.GetValue() == string(metrics.OpLoadAd) {
					assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())
					assert.InDelta(t, 0.03, metric.GetHistogram().GetSampleSum(), 0.0001)
					return
				}
			}
		}
	}
	t.Fatal("load_ad histogram not found")
}

func TestRecordAdEvent(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordAdEvent("interstitial", "opened")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.adEvents.With(prometheus.Labels{
		formatLabel:    "interstitial",
		eventTypeLabel: "opened",
	})))
}

func TestRecordEventStreamConnection(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordEventStreamConnection(true)
	m.RecordEventStreamConnection(true)
	m.RecordEventStreamConnection(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventStreamOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventStreamClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventStreamSubscribed))
}

func TestRecordConnections(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordNewConnection()
	m.RecordNewConnection()
	m.RecordClosedConnection()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsActive))
}
