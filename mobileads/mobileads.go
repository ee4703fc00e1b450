// Package mobileads is the entry point of the binding: SDK initialization, global request configuration and
// the constant tables shared by every ad format.
package mobileads

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/prebid/prebid-mobileads/errortypes"
)

// SDKVersion is the version of this binding.
const SDKVersion = "1.0.0"

// MaxAdContentRating caps the maturity of ads served to the app.
type MaxAdContentRating string

const (
	// MaxAdContentRatingG is content suitable for general audiences, including families.
	MaxAdContentRatingG MaxAdContentRating = "G"
	// MaxAdContentRatingPG is content suitable for most audiences with parental guidance.
	MaxAdContentRatingPG MaxAdContentRating = "PG"
	// MaxAdContentRatingT is content suitable for teen and older audiences.
	MaxAdContentRatingT MaxAdContentRating = "T"
	// MaxAdContentRatingMA is content suitable only for mature audiences.
	MaxAdContentRatingMA MaxAdContentRating = "MA"
)

func (r MaxAdContentRating) Valid() bool {
	switch r {
	case MaxAdContentRatingG, MaxAdContentRatingPG, MaxAdContentRatingT, MaxAdContentRatingMA:
		return true
	}
	return false
}

// TestIds are the demo ad units published by Google. They always fill and never pay out.
var TestIds = struct {
	Banner       string
	Interstitial string
	Rewarded     string
}{
	Banner:       "ca-app-pub-3940256099942544/6300978111",
	Interstitial: "ca-app-pub-3940256099942544/1033173712",
	Rewarded:     "ca-app-pub-3940256099942544/5224354917",
}

// AdapterState is the readiness of one mediation adapter.
type AdapterState int

const (
	AdapterNotReady AdapterState = 0
	AdapterReady    AdapterState = 1
)

type AdapterStatus struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      AdapterState `json:"status"`
}

// RequestConfiguration applies to every ad request made after it is set.
type RequestConfiguration struct {
	MaxAdContentRating           MaxAdContentRating `json:"maxAdContentRating,omitempty"`
	TagForChildDirectedTreatment *bool              `json:"tagForChildDirectedTreatment,omitempty"`
	TagForUnderAgeOfConsent      *bool              `json:"tagForUnderAgeOfConsent,omitempty"`
	TestDeviceIdentifiers        []string           `json:"testDeviceIdentifiers,omitempty"`
}

// Native is the slice of the bridge used by the module.
type Native interface {
	Initialize(ctx context.Context) ([]AdapterStatus, error)
	SetRequestConfiguration(ctx context.Context, config RequestConfiguration) error
}

// Module wraps the SDK wide operations.
type Module struct {
	native Native
}

func New(native Native) *Module {
	return &Module{native: native}
}

// Initialize starts the native SDK and reports the state of every mediation adapter.
func (m *Module) Initialize(ctx context.Context) ([]AdapterStatus, error) {
	statuses, err := m.native.Initialize(ctx)
	if err != nil {
		return nil, errortypes.NewBridge("initialize", err)
	}
	for _, status := range statuses {
		if status.Status != AdapterReady {
			glog.Warningf("Mediation adapter %s is not ready: %s", status.Name, status.Description)
		}
	}
	return statuses, nil
}

func (m *Module) SetRequestConfiguration(ctx context.Context, config RequestConfiguration) error {
	const prefix = "googleAds.setRequestConfiguration(*) "

	if config.MaxAdContentRating != "" && !config.MaxAdContentRating.Valid() {
		return &errortypes.ArgumentValue{
			Message: prefix + "'requestConfiguration.maxAdContentRating' expected one of MaxAdContentRating.G, MaxAdContentRating.PG, MaxAdContentRating.T or MaxAdContentRating.MA.",
		}
	}
	for i, id := range config.TestDeviceIdentifiers {
		if id == "" {
			return &errortypes.ArgumentValue{
				Message: fmt.Sprintf("%s'requestConfiguration.testDeviceIdentifiers[%d]' expected a non-empty string value.", prefix, i),
			}
		}
	}

	return errortypes.NewBridge("setRequestConfiguration", m.native.SetRequestConfiguration(ctx, config))
}
