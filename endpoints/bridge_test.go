package endpoints

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xorcare/pointer"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/errortypes"
	"github.com/prebid/prebid-mobileads/mobileads"
)

func newTestRouter(native bridge.Bridge) *httprouter.Router {
	r := httprouter.New()
	NewBridgeEndpoints(native).Register(r)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

func TestBridgeEndpointsSuccess(t *testing.T) {
	anyCtx := mock.Anything

	testCases := []struct {
		description  string
		method       string
		path         string
		body         string
		setup        func(m *bridge.BridgeMock)
		expectedCode int
		expectedBody string
	}{
		{
			description: "initialize",
			method:      http.MethodPost,
			path:        "/v1/initialize",
			setup: func(m *bridge.BridgeMock) {
				m.On("Initialize", anyCtx).Return([]mobileads.AdapterStatus{{Name: "MobileAds", Description: "sandbox", Status: mobileads.AdapterReady}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"name":"MobileAds","description":"sandbox","status":1}]`,
		},
		{
			description: "request configuration",
			method:      http.MethodPost,
			path:        "/v1/request-configuration",
			body:        `{"maxAdContentRating":"PG","tagForChildDirectedTreatment":true}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("SetRequestConfiguration", anyCtx, mobileads.RequestConfiguration{
					MaxAdContentRating:           mobileads.MaxAdContentRatingPG,
					TagForChildDirectedTreatment: pointer.Bool(true),
				}).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "consent info",
			method:      http.MethodPost,
			path:        "/v1/consent/info",
			body:        `{"publisherIds":["pub-123"]}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("RequestConsentInfoUpdate", anyCtx, []string{"pub-123"}).Return(consent.Info{Status: consent.StatusPersonalized, IsRequestLocationInEEAOrUnknown: true}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"status":2,"isRequestLocationInEeaOrUnknown":true}`,
		},
		{
			description: "consent form",
			method:      http.MethodPost,
			path:        "/v1/consent/form",
			body:        `{"privacyPolicy":"https://example.com/privacy","withAdFree":true}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("ShowConsentForm", anyCtx, consent.FormOptions{PrivacyPolicy: "https://example.com/privacy", WithAdFree: true}).
					Return(consent.FormResult{Status: consent.StatusUnknown, UserPrefersAdFree: true}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"status":0,"userPrefersAdFree":true}`,
		},
		{
			description: "ad providers",
			method:      http.MethodGet,
			path:        "/v1/consent/providers",
			setup: func(m *bridge.BridgeMock) {
				m.On("GetAdProviders", anyCtx).Return([]consent.AdProvider{{CompanyID: "1", CompanyName: "Google", PrivacyPolicyURL: "https://policies.google.com/privacy"}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"companyId":"1","companyName":"Google","privacyPolicyUrl":"https://policies.google.com/privacy"}]`,
		},
		{
			description: "set status",
			method:      http.MethodPut,
			path:        "/v1/consent/status",
			body:        `{"status":1}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("SetConsentStatus", anyCtx, consent.StatusNonPersonalized).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "get status",
			method:      http.MethodGet,
			path:        "/v1/consent/status",
			setup: func(m *bridge.BridgeMock) {
				m.On("GetConsentStatus", anyCtx).Return(consent.StatusPersonalized, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"status":2}`,
		},
		{
			description: "debug geography",
			method:      http.MethodPut,
			path:        "/v1/consent/debug-geography",
			body:        `{"geography":2}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("SetDebugGeography", anyCtx, consent.DebugGeographyNotEEA).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "under age",
			method:      http.MethodPut,
			path:        "/v1/consent/under-age",
			body:        `{"tag":true}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("SetTagForUnderAgeOfConsent", anyCtx, true).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "test devices",
			method:      http.MethodPost,
			path:        "/v1/consent/test-devices",
			body:        `{"deviceIds":["EMULATOR"]}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("AddTestDevices", anyCtx, []string{"EMULATOR"}).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "load ad",
			method:      http.MethodPost,
			path:        "/v1/ads/load",
			body:        `{"format":"interstitial","instanceId":"i-1","requestId":3,"adUnitId":"unit"}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("LoadAd", anyCtx, ads.LoadRequest{Format: ads.FormatInterstitial, InstanceID: "i-1", RequestID: 3, AdUnitID: "unit"}).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "show ad",
			method:      http.MethodPost,
			path:        "/v1/ads/show",
			body:        `{"format":"rewarded","instanceId":"i-2","requestId":1,"adUnitId":"unit"}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("ShowAd", anyCtx, ads.ShowRequest{Format: ads.FormatRewarded, InstanceID: "i-2", RequestID: 1, AdUnitID: "unit"}).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			description: "load banner",
			method:      http.MethodPost,
			path:        "/v1/banners/load",
			body:        `{"instanceId":"b-1","unitId":"unit","size":"BANNER"}`,
			setup: func(m *bridge.BridgeMock) {
				m.On("LoadBanner", anyCtx, banner.Request{InstanceID: "b-1", UnitID: "unit", Size: banner.SizeBanner}).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			native := &bridge.BridgeMock{}
			test.setup(native)

			recorder := serve(newTestRouter(native), test.method, test.path, test.body)

			assert.Equal(t, test.expectedCode, recorder.Code)
			if test.expectedBody != "" {
				assert.JSONEq(t, test.expectedBody, recorder.Body.String())
				assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			} else {
				assert.Empty(t, recorder.Body.String())
			}
			native.AssertExpectations(t)
		})
	}
}

func TestBridgeEndpointsErrors(t *testing.T) {
	testCases := []struct {
		description  string
		body         string
		nativeErr    error
		expectedCode int
		expectedBody string
	}{
		{
			description:  "native message is passed through verbatim",
			body:         `{"publisherIds":["foo"]}`,
			nativeErr:    &errortypes.Bridge{Operation: "requestInfoUpdate", Message: "Could not parse Event FAQ: Publisher misconfiguration: Failed to parse publisher ID: foo"},
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `{"message":"Could not parse Event FAQ: Publisher misconfiguration: Failed to parse publisher ID: foo"}`,
		},
		{
			description:  "plain errors are treated the same way",
			body:         `{"publisherIds":["foo"]}`,
			nativeErr:    errors.New("boom"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: `{"message":"boom"}`,
		},
		{
			description:  "timed out calls",
			body:         `{"publisherIds":["foo"]}`,
			nativeErr:    context.DeadlineExceeded,
			expectedCode: http.StatusGatewayTimeout,
			expectedBody: `{"message":"context deadline exceeded"}`,
		},
		{
			description:  "canceled calls",
			body:         `{"publisherIds":["foo"]}`,
			nativeErr:    context.Canceled,
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"message":"context canceled"}`,
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			native := &bridge.BridgeMock{}
			native.On("RequestConsentInfoUpdate", mock.Anything, []string{"foo"}).Return(consent.Info{}, test.nativeErr)

			recorder := serve(newTestRouter(native), http.MethodPost, "/v1/consent/info", test.body)

			assert.Equal(t, test.expectedCode, recorder.Code)
			assert.JSONEq(t, test.expectedBody, recorder.Body.String())
		})
	}
}

func TestBridgeEndpointsBadBody(t *testing.T) {
	native := &bridge.BridgeMock{}

	recorder := serve(newTestRouter(native), http.MethodPost, "/v1/ads/load", `{"format":`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid request body")

	recorder = serve(newTestRouter(native), http.MethodPost, "/v1/ads/load", `{"adUnitId":"`+strings.Repeat("a", maxRequestBody)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)

	native.AssertNotCalled(t, "LoadAd", mock.Anything, mock.Anything)
}

func TestBridgeEndpointsMethodNotAllowed(t *testing.T) {
	recorder := serve(newTestRouter(&bridge.BridgeMock{}), http.MethodDelete, "/v1/consent/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}
