package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordBridgeCall mock
func (me *MetricsEngineMock) RecordBridgeCall(labels BridgeLabels) {
	me.Called(labels)
}

// RecordBridgeCallTime mock
func (me *MetricsEngineMock) RecordBridgeCallTime(labels BridgeLabels, length time.Duration) {
	me.Called(labels, length)
}

// RecordAdEvent mock
func (me *MetricsEngineMock) RecordAdEvent(format string, eventType string) {
	me.Called(format, eventType)
}

// RecordEventStreamConnection mock
func (me *MetricsEngineMock) RecordEventStreamConnection(opened bool) {
	me.Called(opened)
}

// RecordNewConnection mock
func (me *MetricsEngineMock) RecordNewConnection() {
	me.Called()
}

// RecordClosedConnection mock
func (me *MetricsEngineMock) RecordClosedConnection() {
	me.Called()
}
