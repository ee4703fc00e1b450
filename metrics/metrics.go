package metrics

import (
	"time"
)

// BridgeLabels defines the labels that can be attached to the bridge call metrics.
type BridgeLabels struct {
	Operation BridgeOperation
	Status    BridgeStatus
}

// BridgeOperation names a call made across the native bridge.
type BridgeOperation string

const (
	OpInitialize              BridgeOperation = "initialize"
	OpSetRequestConfiguration BridgeOperation = "set_request_configuration"
	OpRequestInfoUpdate       BridgeOperation = "request_info_update"
	OpShowForm                BridgeOperation = "show_form"
	OpGetAdProviders          BridgeOperation = "get_ad_providers"
	OpSetStatus               BridgeOperation = "set_status"
	OpGetStatus               BridgeOperation = "get_status"
	OpSetDebugGeography       BridgeOperation = "set_debug_geography"
	OpSetTagUnderAge          BridgeOperation = "set_tag_under_age"
	OpAddTestDevices          BridgeOperation = "add_test_devices"
	OpLoadAd                  BridgeOperation = "load_ad"
	OpShowAd                  BridgeOperation = "show_ad"
	OpLoadBanner              BridgeOperation = "load_banner"
)

func BridgeOperations() []BridgeOperation {
	return []BridgeOperation{
		OpInitialize,
		OpSetRequestConfiguration,
		OpRequestInfoUpdate,
		OpShowForm,
		OpGetAdProviders,
		OpSetStatus,
		OpGetStatus,
		OpSetDebugGeography,
		OpSetTagUnderAge,
		OpAddTestDevices,
		OpLoadAd,
		OpShowAd,
		OpLoadBanner,
	}
}

// BridgeStatus : The outcome of a bridge call
type BridgeStatus string

const (
	BridgeStatusOK       BridgeStatus = "ok"
	BridgeStatusErr      BridgeStatus = "err"
	BridgeStatusCanceled BridgeStatus = "canceled"
)

func BridgeStatuses() []BridgeStatus {
	return []BridgeStatus{
		BridgeStatusOK,
		BridgeStatusErr,
		BridgeStatusCanceled,
	}
}

// MetricsEngine is a generic interface to record metrics into the desired backend.
// The first three fields are the ones that matter most: which call went across the bridge,
// how it ended and how long it took.
type MetricsEngine interface {
	RecordBridgeCall(labels BridgeLabels)
	RecordBridgeCallTime(labels BridgeLabels, length time.Duration)
	// RecordAdEvent counts events delivered to ad instances, keyed by ad format and event type.
	RecordAdEvent(format string, eventType string)
	RecordEventStreamConnection(opened bool)
	// RecordNewConnection and RecordClosedConnection track TCP connections to the sandbox host.
	RecordNewConnection()
	RecordClosedConnection()
}
