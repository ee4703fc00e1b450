// Package ads wraps the full-screen ad formats of the native SDK.
//
// InterstitialAd and RewardedAd share one capability set, MobileAd. They differ only in how they are
// created and in which event marks them as loaded.
package ads

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/golang/glog"

	"github.com/prebid/prebid-mobileads/errortypes"
	"github.com/prebid/prebid-mobileads/events"
)

// Native is the slice of the bridge used by full-screen ads.
type Native interface {
	LoadAd(ctx context.Context, request LoadRequest) error
	ShowAd(ctx context.Context, request ShowRequest) error
}

// MobileAd is the capability set shared by InterstitialAd and RewardedAd.
type MobileAd interface {
	AdUnitID() string
	// Loaded reports whether the ad can be shown.
	Loaded() bool
	// Load asks the native layer for an ad. It returns immediately if the ad is loaded or a load is in flight;
	// the outcome arrives as a loaded or error event.
	Load(ctx context.Context) error
	Show(ctx context.Context, options *ShowOptions) error
	// OnAdEvent registers listener and returns a function which removes it. Once that function returns the
	// listener receives no further events.
	OnAdEvent(listener Listener) func()
}

var (
	_ MobileAd = (*InterstitialAd)(nil)
	_ MobileAd = (*RewardedAd)(nil)
)

// InterstitialAd is a full-screen ad shown at natural transition points.
type InterstitialAd struct {
	*adInstance
}

// RewardedAd is a full-screen ad which grants the user a reward for watching it.
type RewardedAd struct {
	*adInstance
}

// NewInterstitial creates an interstitial ad for adUnitID. Nothing is requested until Load is called.
func NewInterstitial(native Native, emitter *events.Emitter, adUnitID string, options *RequestOptions) (*InterstitialAd, error) {
	ad, err := newAdInstance(native, emitter, adKind{
		name:        "InterstitialAd",
		format:      FormatInterstitial,
		loadedEvent: AdEventTypeLoaded,
	}, adUnitID, options)
	if err != nil {
		return nil, err
	}
	return &InterstitialAd{ad}, nil
}

// NewRewarded creates a rewarded ad for adUnitID. Nothing is requested until Load is called.
func NewRewarded(native Native, emitter *events.Emitter, adUnitID string, options *RequestOptions) (*RewardedAd, error) {
	ad, err := newAdInstance(native, emitter, adKind{
		name:        "RewardedAd",
		format:      FormatRewarded,
		loadedEvent: RewardedAdEventTypeLoaded,
	}, adUnitID, options)
	if err != nil {
		return nil, err
	}
	return &RewardedAd{ad}, nil
}

type adKind struct {
	name        string
	format      Format
	loadedEvent EventType
}

type adInstance struct {
	kind           adKind
	native         Native
	emitter        *events.Emitter
	instanceID     string
	adUnitID       string
	requestOptions *RequestOptions

	mu        sync.Mutex
	loaded    bool
	loading   bool
	requestID int
}

func newAdInstance(native Native, emitter *events.Emitter, kind adKind, adUnitID string, options *RequestOptions) (*adInstance, error) {
	method := kind.name + ".createForAdRequest"
	if err := validateAdUnitID(method, adUnitID); err != nil {
		return nil, err
	}
	if err := ValidateRequestOptions(method, options); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate instance id: %v", method, err)
	}

	ad := &adInstance{
		kind:           kind,
		native:         native,
		emitter:        emitter,
		instanceID:     id.String(),
		adUnitID:       adUnitID,
		requestOptions: options,
	}
	// Registered before any caller listener so state is current by the time they run.
	emitter.Subscribe(ad.instanceID, ad.track)
	return ad, nil
}

func (a *adInstance) AdUnitID() string {
	return a.adUnitID
}

// InstanceID is the identity the native layer uses when emitting events for this ad.
func (a *adInstance) InstanceID() string {
	return a.instanceID
}

func (a *adInstance) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

func (a *adInstance) Load(ctx context.Context) error {
	a.mu.Lock()
	if a.loaded || a.loading {
		a.mu.Unlock()
		return nil
	}
	a.loading = true
	a.requestID++
	request := LoadRequest{
		Format:         a.kind.format,
		InstanceID:     a.instanceID,
		RequestID:      a.requestID,
		AdUnitID:       a.adUnitID,
		RequestOptions: a.requestOptions,
	}
	a.mu.Unlock()

	if err := a.native.LoadAd(ctx, request); err != nil {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
		return errortypes.NewBridge(string(a.kind.format)+"Load", err)
	}
	return nil
}

func (a *adInstance) Show(ctx context.Context, options *ShowOptions) error {
	a.mu.Lock()
	loaded := a.loaded
	request := ShowRequest{
		Format:      a.kind.format,
		InstanceID:  a.instanceID,
		RequestID:   a.requestID,
		AdUnitID:    a.adUnitID,
		ShowOptions: options,
	}
	a.mu.Unlock()

	if !loaded {
		return &errortypes.InvalidState{
			Message: fmt.Sprintf("%s.show() The requested %s has not loaded and could not be shown.", a.kind.name, a.kind.name),
		}
	}
	return errortypes.NewBridge(string(a.kind.format)+"Show", a.native.ShowAd(ctx, request))
}

func (a *adInstance) OnAdEvent(listener Listener) func() {
	return a.emitter.Subscribe(a.instanceID, func(e events.Event) {
		listener(AdEvent{
			Type:  EventType(e.Type),
			Error: e.Error,
			Data:  e.Data,
		})
	})
}

// Destroy removes every listener of the ad, including its own state tracking. The ad cannot be used afterwards.
func (a *adInstance) Destroy() {
	a.emitter.RemoveAll(a.instanceID)
	a.mu.Lock()
	a.loaded = false
	a.loading = false
	a.mu.Unlock()
}

func (a *adInstance) track(e events.Event) {
	if err := a.apply(e); err != nil {
		glog.Warningf("%v (warning %d)", err, errortypes.ReadCode(err))
	}
}

// apply updates the loaded state from e. Unknown event types leave it untouched and yield a warning.
func (a *adInstance) apply(e events.Event) error {
	eventType := EventType(e.Type)
	if !KnownEventType(eventType) {
		return &errortypes.Warning{
			Message:     fmt.Sprintf("%s %s received unknown event type %q", a.kind.name, a.instanceID, e.Type),
			WarningCode: errortypes.UnknownEventTypeWarningCode,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	switch eventType {
	case a.kind.loadedEvent:
		a.loaded = true
		a.loading = false
	case AdEventTypeError, AdEventTypeClosed:
		a.loaded = false
		a.loading = false
	}
	return nil
}
