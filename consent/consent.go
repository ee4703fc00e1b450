// Package consent exposes the EU consent operations of the native ads SDK.
//
// Arguments are validated here, synchronously, before anything crosses the bridge. Everything else,
// including the consent form itself, belongs to the native layer.
package consent

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/prebid/prebid-mobileads/errortypes"
)

// Native is the slice of the bridge used by AdsConsent.
type Native interface {
	RequestConsentInfoUpdate(ctx context.Context, publisherIDs []string) (Info, error)
	ShowConsentForm(ctx context.Context, options FormOptions) (FormResult, error)
	GetAdProviders(ctx context.Context) ([]AdProvider, error)
	SetConsentStatus(ctx context.Context, status Status) error
	GetConsentStatus(ctx context.Context) (Status, error)
	SetDebugGeography(ctx context.Context, geography DebugGeography) error
	SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error
	AddTestDevices(ctx context.Context, deviceIDs []string) error
}

// AdsConsent is the typed consent surface. It holds no state of its own.
type AdsConsent struct {
	native Native
}

func New(native Native) *AdsConsent {
	return &AdsConsent{native: native}
}

// RequestInfoUpdate asks the native SDK for the consent status of the given publishers.
//
// publisherIDs is deliberately untyped: it accepts whatever the caller decoded, and rejects anything that is
// not a non-empty sequence of strings with an ArgumentType or ArgumentValue error before calling the bridge.
func (c *AdsConsent) RequestInfoUpdate(ctx context.Context, publisherIDs interface{}) (Info, error) {
	ids, warnings, err := validatePublisherIDs(publisherIDs)
	if err != nil {
		return Info{}, err
	}
	for _, warning := range warnings {
		glog.Warningf("%v (warning %d)", warning, errortypes.ReadCode(warning))
	}

	info, err := c.native.RequestConsentInfoUpdate(ctx, ids)
	if err != nil {
		return Info{}, errortypes.NewBridge("requestConsentInfoUpdate", err)
	}
	glog.V(1).Infof("Consent info updated for %d publisher(s): status=%s eea_or_unknown=%t", len(ids), info.Status, info.IsRequestLocationInEEAOrUnknown)
	return info, nil
}

// ShowForm displays the native consent form and returns the user's choice.
func (c *AdsConsent) ShowForm(ctx context.Context, options FormOptions) (FormResult, error) {
	if err := validateFormOptions(options); err != nil {
		return FormResult{}, err
	}

	result, err := c.native.ShowConsentForm(ctx, options)
	if err != nil {
		return FormResult{}, errortypes.NewBridge("showConsentForm", err)
	}
	return result, nil
}

// GetAdProviders returns the ad technology providers attached to the publisher IDs of the last info update.
func (c *AdsConsent) GetAdProviders(ctx context.Context) ([]AdProvider, error) {
	providers, err := c.native.GetAdProviders(ctx)
	if err != nil {
		return nil, errortypes.NewBridge("getAdProviders", err)
	}
	return providers, nil
}

// SetDebugGeography pretends the device is inside or outside the EEA. Only honoured for test devices.
func (c *AdsConsent) SetDebugGeography(ctx context.Context, geography DebugGeography) error {
	if !geography.Valid() {
		return &errortypes.ArgumentValue{
			Message: "AdsConsent.setDebugGeography(*) 'geography' expected one of AdsConsentDebugGeography.DISABLED, AdsConsentDebugGeography.EEA or AdsConsentDebugGeography.NOT_EEA.",
		}
	}
	return errortypes.NewBridge("setDebugGeography", c.native.SetDebugGeography(ctx, geography))
}

// SetStatus records a consent status gathered outside of the native form.
func (c *AdsConsent) SetStatus(ctx context.Context, status Status) error {
	if !status.Valid() {
		return &errortypes.ArgumentValue{
			Message: "AdsConsent.setStatus(*) 'status' expected one of AdsConsentStatus.PERSONALIZED, AdsConsentStatus.NON_PERSONALIZED or AdsConsentStatus.UNKNOWN.",
		}
	}
	return errortypes.NewBridge("setConsentStatus", c.native.SetConsentStatus(ctx, status))
}

func (c *AdsConsent) GetStatus(ctx context.Context) (Status, error) {
	status, err := c.native.GetConsentStatus(ctx)
	if err != nil {
		return StatusUnknown, errortypes.NewBridge("getConsentStatus", err)
	}
	if !status.Valid() {
		return StatusUnknown, &errortypes.Bridge{
			Operation: "getConsentStatus",
			Message:   fmt.Sprintf("native layer returned an unknown consent status: %d", int(status)),
		}
	}
	return status, nil
}

func (c *AdsConsent) SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error {
	return errortypes.NewBridge("setTagForUnderAgeOfConsent", c.native.SetTagForUnderAgeOfConsent(ctx, tag))
}

// AddTestDevices marks devices as test devices so SetDebugGeography applies to them.
// Like RequestInfoUpdate, deviceIDs is validated as a dynamically typed sequence of strings.
func (c *AdsConsent) AddTestDevices(ctx context.Context, deviceIDs interface{}) error {
	ids, err := validateTestDeviceIDs(deviceIDs)
	if err != nil {
		return err
	}
	return errortypes.NewBridge("addTestDevices", c.native.AddTestDevices(ctx, ids))
}
