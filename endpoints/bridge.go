package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/mobileads"
	"github.com/prebid/prebid-mobileads/simulator"
)

// maxRequestBody bounds the JSON body of one bridge call.
const maxRequestBody = 64 << 10

// BridgeEndpoints serves the /v1 bridge protocol on top of a bridge.Bridge.
type BridgeEndpoints struct {
	native bridge.Bridge
}

func NewBridgeEndpoints(native bridge.Bridge) *BridgeEndpoints {
	return &BridgeEndpoints{native: native}
}

// Register mounts every bridge call on r. Each aspect wraps every handler, the first one outermost.
func (e *BridgeEndpoints) Register(r *httprouter.Router, aspects ...func(httprouter.Handle) httprouter.Handle) {
	wrap := func(h httprouter.Handle) httprouter.Handle {
		for i := len(aspects) - 1; i >= 0; i-- {
			h = aspects[i](h)
		}
		return h
	}

	r.POST("/v1/initialize", wrap(e.Initialize))
	r.POST("/v1/request-configuration", wrap(e.SetRequestConfiguration))
	r.POST("/v1/consent/info", wrap(e.RequestConsentInfoUpdate))
	r.POST("/v1/consent/form", wrap(e.ShowConsentForm))
	r.GET("/v1/consent/providers", wrap(e.GetAdProviders))
	r.PUT("/v1/consent/status", wrap(e.SetConsentStatus))
	r.GET("/v1/consent/status", wrap(e.GetConsentStatus))
	r.PUT("/v1/consent/debug-geography", wrap(e.SetDebugGeography))
	r.PUT("/v1/consent/under-age", wrap(e.SetTagForUnderAgeOfConsent))
	r.POST("/v1/consent/test-devices", wrap(e.AddTestDevices))
	r.POST("/v1/ads/load", wrap(e.LoadAd))
	r.POST("/v1/ads/show", wrap(e.ShowAd))
	r.POST("/v1/banners/load", wrap(e.LoadBanner))
}

func (e *BridgeEndpoints) Initialize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	statuses, err := e.native.Initialize(deviceContext(r))
	respond(w, r, statuses, err)
}

func (e *BridgeEndpoints) SetRequestConfiguration(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var config mobileads.RequestConfiguration
	if !readBody(w, r, &config) {
		return
	}
	respond(w, r, nil, e.native.SetRequestConfiguration(deviceContext(r), config))
}

func (e *BridgeEndpoints) RequestConsentInfoUpdate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body bridge.PublisherIDsBody
	if !readBody(w, r, &body) {
		return
	}
	info, err := e.native.RequestConsentInfoUpdate(deviceContext(r), body.PublisherIDs)
	respond(w, r, info, err)
}

func (e *BridgeEndpoints) ShowConsentForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var options consent.FormOptions
	if !readBody(w, r, &options) {
		return
	}
	result, err := e.native.ShowConsentForm(deviceContext(r), options)
	respond(w, r, result, err)
}

func (e *BridgeEndpoints) GetAdProviders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	providers, err := e.native.GetAdProviders(deviceContext(r))
	respond(w, r, providers, err)
}

func (e *BridgeEndpoints) SetConsentStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body bridge.StatusBody
	if !readBody(w, r, &body) {
		return
	}
	respond(w, r, nil, e.native.SetConsentStatus(deviceContext(r), body.Status))
}

func (e *BridgeEndpoints) GetConsentStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status, err := e.native.GetConsentStatus(deviceContext(r))
	respond(w, r, bridge.StatusBody{Status: status}, err)
}

func (e *BridgeEndpoints) SetDebugGeography(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body bridge.GeographyBody
	if !readBody(w, r, &body) {
		return
	}
	respond(w, r, nil, e.native.SetDebugGeography(deviceContext(r), body.Geography))
}

func (e *BridgeEndpoints) SetTagForUnderAgeOfConsent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body bridge.TagBody
	if !readBody(w, r, &body) {
		return
	}
	respond(w, r, nil, e.native.SetTagForUnderAgeOfConsent(deviceContext(r), body.Tag))
}

func (e *BridgeEndpoints) AddTestDevices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body bridge.DeviceIDsBody
	if !readBody(w, r, &body) {
		return
	}
	respond(w, r, nil, e.native.AddTestDevices(deviceContext(r), body.DeviceIDs))
}

func (e *BridgeEndpoints) LoadAd(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request ads.LoadRequest
	if !readBody(w, r, &request) {
		return
	}
	respond(w, r, nil, e.native.LoadAd(deviceContext(r), request))
}

func (e *BridgeEndpoints) ShowAd(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request ads.ShowRequest
	if !readBody(w, r, &request) {
		return
	}
	respond(w, r, nil, e.native.ShowAd(deviceContext(r), request))
}

func (e *BridgeEndpoints) LoadBanner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request banner.Request
	if !readBody(w, r, &request) {
		return
	}
	respond(w, r, nil, e.native.LoadBanner(deviceContext(r), request))
}

// deviceContext scopes the call to the device named by the request header, if any.
func deviceContext(r *http.Request) context.Context {
	if deviceID := r.Header.Get(bridge.DeviceIDHeader); deviceID != "" {
		return simulator.WithDeviceID(r.Context(), deviceID)
	}
	return r.Context()
}

func readBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read request body: %v", err))
		return false
	}
	if len(body) > maxRequestBody {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// respond writes out as JSON, or the native failure message when err is set. A nil out answers 204.
func respond(w http.ResponseWriter, r *http.Request, out interface{}, err error) {
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			glog.V(1).Infof("%s %s timed out: %v", r.Method, r.URL.Path, err)
			writeError(w, http.StatusGatewayTimeout, err.Error())
		case errors.Is(err, context.Canceled):
			glog.V(1).Infof("%s %s abandoned: %v", r.Method, r.URL.Path, err)
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, bridge.ErrorBody{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		glog.Errorf("Failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		glog.Errorf("Failed to write response: %v", err)
	}
}
