package bridge

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/mobileads"
)

// BridgeMock is mock for the Bridge interface
type BridgeMock struct {
	mock.Mock
}

var _ Bridge = (*BridgeMock)(nil)

// Initialize mock
func (m *BridgeMock) Initialize(ctx context.Context) ([]mobileads.AdapterStatus, error) {
	args := m.Called(ctx)
	statuses, _ := args.Get(0).([]mobileads.AdapterStatus)
	return statuses, args.Error(1)
}

// SetRequestConfiguration mock
func (m *BridgeMock) SetRequestConfiguration(ctx context.Context, config mobileads.RequestConfiguration) error {
	return m.Called(ctx, config).Error(0)
}

// RequestConsentInfoUpdate mock
func (m *BridgeMock) RequestConsentInfoUpdate(ctx context.Context, publisherIDs []string) (consent.Info, error) {
	args := m.Called(ctx, publisherIDs)
	info, _ := args.Get(0).(consent.Info)
	return info, args.Error(1)
}

// ShowConsentForm mock
func (m *BridgeMock) ShowConsentForm(ctx context.Context, options consent.FormOptions) (consent.FormResult, error) {
	args := m.Called(ctx, options)
	result, _ := args.Get(0).(consent.FormResult)
	return result, args.Error(1)
}

// GetAdProviders mock
func (m *BridgeMock) GetAdProviders(ctx context.Context) ([]consent.AdProvider, error) {
	args := m.Called(ctx)
	providers, _ := args.Get(0).([]consent.AdProvider)
	return providers, args.Error(1)
}

// SetConsentStatus mock
func (m *BridgeMock) SetConsentStatus(ctx context.Context, status consent.Status) error {
	return m.Called(ctx, status).Error(0)
}

// GetConsentStatus mock
func (m *BridgeMock) GetConsentStatus(ctx context.Context) (consent.Status, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(consent.Status)
	return status, args.Error(1)
}

// SetDebugGeography mock
func (m *BridgeMock) SetDebugGeography(ctx context.Context, geography consent.DebugGeography) error {
	return m.Called(ctx, geography).Error(0)
}

// SetTagForUnderAgeOfConsent mock
func (m *BridgeMock) SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error {
	return m.Called(ctx, tag).Error(0)
}

// AddTestDevices mock
func (m *BridgeMock) AddTestDevices(ctx context.Context, deviceIDs []string) error {
	return m.Called(ctx, deviceIDs).Error(0)
}

// LoadAd mock
func (m *BridgeMock) LoadAd(ctx context.Context, request ads.LoadRequest) error {
	return m.Called(ctx, request).Error(0)
}

// ShowAd mock
func (m *BridgeMock) ShowAd(ctx context.Context, request ads.ShowRequest) error {
	return m.Called(ctx, request).Error(0)
}

// LoadBanner mock
func (m *BridgeMock) LoadBanner(ctx context.Context, request banner.Request) error {
	return m.Called(ctx, request).Error(0)
}
