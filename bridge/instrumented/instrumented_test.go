package instrumented

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/errortypes"
	"github.com/prebid/prebid-mobileads/metrics"
	"github.com/prebid/prebid-mobileads/mobileads"
)

// advancingBridge moves the mock clock forward while a call is in flight.
type advancingBridge struct {
	*bridge.BridgeMock
	clock *clock.Mock
	delay time.Duration
}

func (b *advancingBridge) LoadAd(ctx context.Context, request ads.LoadRequest) error {
	b.clock.Add(b.delay)
	return b.BridgeMock.LoadAd(ctx, request)
}

func TestRecordsSuccessfulCall(t *testing.T) {
	ctx := context.Background()
	mockClock := clock.NewMock()
	next := &advancingBridge{BridgeMock: &bridge.BridgeMock{}, clock: mockClock, delay: 15 * time.Millisecond}
	request := ads.LoadRequest{Format: ads.FormatInterstitial, InstanceID: "i1", RequestID: 1, AdUnitID: "unit"}
	next.On("LoadAd", ctx, request).Return(nil)

	me := &metrics.MetricsEngineMock{}
	labels := metrics.BridgeLabels{Operation: metrics.OpLoadAd, Status: metrics.BridgeStatusOK}
	me.On("RecordBridgeCall", labels).Once()
	me.On("RecordBridgeCallTime", labels, 15*time.Millisecond).Once()

	err := newWithClock(next, me, mockClock).LoadAd(ctx, request)

	require.NoError(t, err)
	next.AssertExpectations(t)
	me.AssertExpectations(t)
}

func TestRecordsFailedCallAndPassesErrorThrough(t *testing.T) {
	ctx := context.Background()
	next := &bridge.BridgeMock{}
	bridgeErr := &errortypes.Bridge{Operation: "requestInfoUpdate", Message: "Could not parse Event FAQ."}
	next.On("RequestConsentInfoUpdate", ctx, []string{"pub-1"}).Return(consent.Info{}, bridgeErr)

	me := &metrics.MetricsEngineMock{}
	labels := metrics.BridgeLabels{Operation: metrics.OpRequestInfoUpdate, Status: metrics.BridgeStatusErr}
	me.On("RecordBridgeCall", labels).Once()
	me.On("RecordBridgeCallTime", labels, mock.AnythingOfType("time.Duration")).Once()

	_, err := newWithClock(next, me, clock.NewMock()).RequestConsentInfoUpdate(ctx, []string{"pub-1"})

	assert.Same(t, bridgeErr, err)
	me.AssertExpectations(t)
}

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expected    metrics.BridgeStatus
	}{
		{description: "nil", err: nil, expected: metrics.BridgeStatusOK},
		{description: "canceled", err: context.Canceled, expected: metrics.BridgeStatusCanceled},
		{description: "deadline", err: context.DeadlineExceeded, expected: metrics.BridgeStatusCanceled},
		{description: "bridge", err: &errortypes.Bridge{Message: "boom"}, expected: metrics.BridgeStatusErr},
		{description: "other", err: errors.New("boom"), expected: metrics.BridgeStatusErr},
	}
	for _, test := range testCases {
		assert.Equal(t, test.expected, statusOf(test.err), test.description)
	}
}

func TestEveryOperationIsRecorded(t *testing.T) {
	ctx := context.Background()
	next := &bridge.BridgeMock{}
	next.On("Initialize", ctx).Return(nil, nil)
	next.On("SetRequestConfiguration", ctx, mock.Anything).Return(nil)
	next.On("RequestConsentInfoUpdate", ctx, mock.Anything).Return(consent.Info{}, nil)
	next.On("ShowConsentForm", ctx, mock.Anything).Return(consent.FormResult{}, nil)
	next.On("GetAdProviders", ctx).Return(nil, nil)
	next.On("SetConsentStatus", ctx, mock.Anything).Return(nil)
	next.On("GetConsentStatus", ctx).Return(consent.StatusUnknown, nil)
	next.On("SetDebugGeography", ctx, mock.Anything).Return(nil)
	next.On("SetTagForUnderAgeOfConsent", ctx, mock.Anything).Return(nil)
	next.On("AddTestDevices", ctx, mock.Anything).Return(nil)
	next.On("LoadAd", ctx, mock.Anything).Return(nil)
	next.On("ShowAd", ctx, mock.Anything).Return(nil)
	next.On("LoadBanner", ctx, mock.Anything).Return(nil)

	me := &metrics.MetricsEngineMock{}
	for _, op := range metrics.BridgeOperations() {
		labels := metrics.BridgeLabels{Operation: op, Status: metrics.BridgeStatusOK}
		me.On("RecordBridgeCall", labels).Once()
		me.On("RecordBridgeCallTime", labels, time.Duration(0)).Once()
	}

	b := newWithClock(next, me, clock.NewMock())
	_, _ = b.Initialize(ctx)
	_ = b.SetRequestConfiguration(ctx, mobileads.RequestConfiguration{})
	_, _ = b.RequestConsentInfoUpdate(ctx, []string{"pub-1"})
	_, _ = b.ShowConsentForm(ctx, consent.FormOptions{})
	_, _ = b.GetAdProviders(ctx)
	_ = b.SetConsentStatus(ctx, consent.StatusPersonalized)
	_, _ = b.GetConsentStatus(ctx)
	_ = b.SetDebugGeography(ctx, consent.DebugGeographyEEA)
	_ = b.SetTagForUnderAgeOfConsent(ctx, true)
	_ = b.AddTestDevices(ctx, []string{"EMULATOR"})
	_ = b.LoadAd(ctx, ads.LoadRequest{})
	_ = b.ShowAd(ctx, ads.ShowRequest{})
	_ = b.LoadBanner(ctx, banner.Request{})

	me.AssertExpectations(t)
}
