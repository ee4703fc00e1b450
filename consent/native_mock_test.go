package consent

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockNative struct {
	mock.Mock
}

func (m *mockNative) RequestConsentInfoUpdate(ctx context.Context, publisherIDs []string) (Info, error) {
	args := m.Called(ctx, publisherIDs)
	return args.Get(0).(Info), args.Error(1)
}

func (m *mockNative) ShowConsentForm(ctx context.Context, options FormOptions) (FormResult, error) {
	args := m.Called(ctx, options)
	return args.Get(0).(FormResult), args.Error(1)
}

func (m *mockNative) GetAdProviders(ctx context.Context) ([]AdProvider, error) {
	args := m.Called(ctx)
	return args.Get(0).([]AdProvider), args.Error(1)
}

func (m *mockNative) SetConsentStatus(ctx context.Context, status Status) error {
	return m.Called(ctx, status).Error(0)
}

func (m *mockNative) GetConsentStatus(ctx context.Context) (Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(Status), args.Error(1)
}

func (m *mockNative) SetDebugGeography(ctx context.Context, geography DebugGeography) error {
	return m.Called(ctx, geography).Error(0)
}

func (m *mockNative) SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *mockNative) AddTestDevices(ctx context.Context, deviceIDs []string) error {
	return m.Called(ctx, deviceIDs).Error(0)
}
