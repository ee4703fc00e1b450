// Package instrumented decorates a bridge.Bridge with call counts and latencies.
package instrumented

import (
	"context"
	"errors"

	"github.com/benbjohnson/clock"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/metrics"
	"github.com/prebid/prebid-mobileads/mobileads"
)

type instrumentedBridge struct {
	next          bridge.Bridge
	metricsEngine metrics.MetricsEngine
	clock         clock.Clock
}

// New wraps next so every call is recorded in metricsEngine.
func New(next bridge.Bridge, metricsEngine metrics.MetricsEngine) bridge.Bridge {
	return newWithClock(next, metricsEngine, clock.New())
}

func newWithClock(next bridge.Bridge, metricsEngine metrics.MetricsEngine, c clock.Clock) *instrumentedBridge {
	return &instrumentedBridge{
		next:          next,
		metricsEngine: metricsEngine,
		clock:         c,
	}
}

func (b *instrumentedBridge) observe(op metrics.BridgeOperation) func(error) {
	start := b.clock.Now()
	return func(err error) {
		labels := metrics.BridgeLabels{Operation: op, Status: statusOf(err)}
		b.metricsEngine.RecordBridgeCall(labels)
		b.metricsEngine.RecordBridgeCallTime(labels, b.clock.Since(start))
	}
}

func statusOf(err error) metrics.BridgeStatus {
	switch {
	case err == nil:
		return metrics.BridgeStatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.BridgeStatusCanceled
	default:
		return metrics.BridgeStatusErr
	}
}

func (b *instrumentedBridge) Initialize(ctx context.Context) ([]mobileads.AdapterStatus, error) {
	done := b.observe(metrics.OpInitialize)
	statuses, err := b.next.Initialize(ctx)
	done(err)
	return statuses, err
}

func (b *instrumentedBridge) SetRequestConfiguration(ctx context.Context, config mobileads.RequestConfiguration) error {
	done := b.observe(metrics.OpSetRequestConfiguration)
	err := b.next.SetRequestConfiguration(ctx, config)
	done(err)
	return err
}

func (b *instrumentedBridge) RequestConsentInfoUpdate(ctx context.Context, publisherIDs []string) (consent.Info, error) {
	done := b.observe(metrics.OpRequestInfoUpdate)
	info, err := b.next.RequestConsentInfoUpdate(ctx, publisherIDs)
	done(err)
	return info, err
}

func (b *instrumentedBridge) ShowConsentForm(ctx context.Context, options consent.FormOptions) (consent.FormResult, error) {
	done := b.observe(metrics.OpShowForm)
	result, err := b.next.ShowConsentForm(ctx, options)
	done(err)
	return result, err
}

func (b *instrumentedBridge) GetAdProviders(ctx context.Context) ([]consent.AdProvider, error) {
	done := b.observe(metrics.OpGetAdProviders)
	providers, err := b.next.GetAdProviders(ctx)
	done(err)
	return providers, err
}

func (b *instrumentedBridge) SetConsentStatus(ctx context.Context, status consent.Status) error {
	done := b.observe(metrics.OpSetStatus)
	err := b.next.SetConsentStatus(ctx, status)
	done(err)
	return err
}

func (b *instrumentedBridge) GetConsentStatus(ctx context.Context) (consent.Status, error) {
	done := b.observe(metrics.OpGetStatus)
	status, err := b.next.GetConsentStatus(ctx)
	done(err)
	return status, err
}

func (b *instrumentedBridge) SetDebugGeography(ctx context.Context, geography consent.DebugGeography) error {
	done := b.observe(metrics.OpSetDebugGeography)
	err := b.next.SetDebugGeography(ctx, geography)
	done(err)
	return err
}

func (b *instrumentedBridge) SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error {
	done := b.observe(metrics.OpSetTagUnderAge)
	err := b.next.SetTagForUnderAgeOfConsent(ctx, tag)
	done(err)
	return err
}

func (b *instrumentedBridge) AddTestDevices(ctx context.Context, deviceIDs []string) error {
	done := b.observe(metrics.OpAddTestDevices)
	err := b.next.AddTestDevices(ctx, deviceIDs)
	done(err)
	return err
}

func (b *instrumentedBridge) LoadAd(ctx context.Context, request ads.LoadRequest) error {
	done := b.observe(metrics.OpLoadAd)
	err := b.next.LoadAd(ctx, request)
	done(err)
	return err
}

func (b *instrumentedBridge) ShowAd(ctx context.Context, request ads.ShowRequest) error {
	done := b.observe(metrics.OpShowAd)
	err := b.next.ShowAd(ctx, request)
	done(err)
	return err
}

func (b *instrumentedBridge) LoadBanner(ctx context.Context, request banner.Request) error {
	done := b.observe(metrics.OpLoadBanner)
	err := b.next.LoadBanner(ctx, request)
	done(err)
	return err
}
