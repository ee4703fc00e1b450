// Package simulator is an in-process sandbox implementation of the native ads bridge. It answers consent
// calls from a per-device state store and plays back canned ad lifecycles, so apps and tests can run
// without a device or an ad network.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/bridge"
	"github.com/prebid/prebid-mobileads/config"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/events"
	"github.com/prebid/prebid-mobileads/mobileads"
	"github.com/prebid/prebid-mobileads/simulator/store"
)

// EventSink receives the lifecycle events the simulator plays back. *events.Emitter satisfies it.
type EventSink interface {
	Emit(event events.Event) int
}

const bannerFormat = "banner"

var publisherIDPattern = regexp.MustCompile(`^pub-[0-9]+$`)

type deviceKey struct{}

// WithDeviceID scopes the consent calls made with ctx to deviceID.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceKey{}, deviceID)
}

// Simulator implements bridge.Bridge.
type Simulator struct {
	cfg   config.Sandbox
	store store.Store
	sink  EventSink
	clock clock.Clock

	// seeded is the status of devices that never answered the form, from sandbox.consent_string.
	seeded consent.Status

	// stateMu serializes read-modify-write cycles on device state.
	stateMu sync.Mutex

	mu     sync.Mutex
	loaded map[string]int
}

var _ bridge.Bridge = (*Simulator)(nil)

func New(cfg config.Sandbox, st store.Store, sink EventSink) *Simulator {
	return newWithClock(cfg, st, sink, clock.New())
}

func newWithClock(cfg config.Sandbox, st store.Store, sink EventSink, c clock.Clock) *Simulator {
	return &Simulator{
		cfg:    cfg,
		store:  st,
		sink:   sink,
		clock:  c,
		seeded: seedStatus(cfg.ConsentString),
		loaded: make(map[string]int),
	}
}

// seedStatus maps a TC string to the status the consent SDK reports before the form is shown.
func seedStatus(consentString string) consent.Status {
	if consentString == "" {
		return consent.StatusUnknown
	}
	tcf, err := consent.DecodeTCString(consentString)
	if err != nil {
		glog.Warningf("Ignoring sandbox.consent_string: %v", err)
		return consent.StatusUnknown
	}
	glog.Infof("Seeding sandbox consent from a TC string allowing purposes %v", tcf.AllowedPurposes())
	if tcf.Personalized() {
		return consent.StatusPersonalized
	}
	return consent.StatusNonPersonalized
}

func (s *Simulator) status(state store.State) consent.Status {
	if state.StatusSet {
		return state.Status
	}
	return s.seeded
}

func (s *Simulator) deviceID(ctx context.Context) string {
	if id, ok := ctx.Value(deviceKey{}).(string); ok && id != "" {
		return id
	}
	return s.cfg.DeviceID
}

// update loads the device state, applies fn and saves the result unless fn fails.
func (s *Simulator) update(ctx context.Context, fn func(state *store.State) error) (store.State, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	deviceID := s.deviceID(ctx)
	state, err := s.store.Load(ctx, deviceID)
	if err != nil {
		return state, err
	}
	if err := fn(&state); err != nil {
		return state, err
	}
	return state, s.store.Save(ctx, deviceID, state)
}

func (s *Simulator) Initialize(ctx context.Context) ([]mobileads.AdapterStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	statuses := make([]mobileads.AdapterStatus, 0, len(s.cfg.Adapters))
	for _, adapter := range s.cfg.Adapters {
		status := mobileads.AdapterNotReady
		if adapter.Ready {
			status = mobileads.AdapterReady
		}
		statuses = append(statuses, mobileads.AdapterStatus{
			Name:        adapter.Name,
			Description: adapter.Description,
			Status:      status,
		})
	}
	return statuses, nil
}

func (s *Simulator) SetRequestConfiguration(ctx context.Context, cfg mobileads.RequestConfiguration) error {
	_, err := s.update(ctx, func(state *store.State) error {
		if cfg.MaxAdContentRating != "" {
			state.MaxAdRating = string(cfg.MaxAdContentRating)
		}
		if cfg.TagForChildDirectedTreatment != nil {
			state.ChildDirected = cfg.TagForChildDirectedTreatment
		}
		if cfg.TagForUnderAgeOfConsent != nil {
			state.TagUnderAge = *cfg.TagForUnderAgeOfConsent
		}
		if cfg.TestDeviceIdentifiers != nil {
			state.TestDeviceIDs = cfg.TestDeviceIdentifiers
		}
		return nil
	})
	return err
}

func (s *Simulator) RequestConsentInfoUpdate(ctx context.Context, publisherIDs []string) (consent.Info, error) {
	for _, id := range publisherIDs {
		if !publisherIDPattern.MatchString(id) {
			return consent.Info{}, fmt.Errorf("Could not parse Event FAQ: Publisher misconfiguration: Failed to parse publisher ID: %s", id)
		}
	}

	deviceID := s.deviceID(ctx)
	state, err := s.update(ctx, func(state *store.State) error {
		state.InfoUpdated = true
		state.PublisherIDs = publisherIDs
		return nil
	})
	if err != nil {
		return consent.Info{}, err
	}
	return consent.Info{
		Status:                          s.status(state),
		IsRequestLocationInEEAOrUnknown: s.inEEA(state, deviceID),
	}, nil
}

// inEEA applies the debug geography, which only test devices honour.
func (s *Simulator) inEEA(state store.State, deviceID string) bool {
	if state.IsTestDevice(deviceID) {
		switch state.DebugGeography {
		case consent.DebugGeographyEEA:
			return true
		case consent.DebugGeographyNotEEA:
			return false
		}
	}
	return s.cfg.InEEA
}

func (s *Simulator) ShowConsentForm(ctx context.Context, options consent.FormOptions) (consent.FormResult, error) {
	var result consent.FormResult
	_, err := s.update(ctx, func(state *store.State) error {
		if !state.InfoUpdated {
			return errors.New("Consent form error: consent information has not been updated. Call requestInfoUpdate first.")
		}
		choice, ok := s.formChoice(options)
		if !ok {
			return errors.New("Consent form error: no option enabled on the form.")
		}
		switch choice {
		case "personalized":
			result = consent.FormResult{Status: consent.StatusPersonalized}
		case "non_personalized":
			result = consent.FormResult{Status: consent.StatusNonPersonalized}
		default:
			result = consent.FormResult{Status: consent.StatusUnknown, UserPrefersAdFree: true}
		}
		state.Status = result.Status
		state.StatusSet = true
		state.PrefersAdFree = result.UserPrefersAdFree
		return nil
	})
	return result, err
}

// formChoice is the configured answer when the form offers it, else the first option the form offers.
func (s *Simulator) formChoice(options consent.FormOptions) (string, bool) {
	offered := map[string]bool{
		"personalized":     options.WithPersonalizedAds,
		"non_personalized": options.WithNonPersonalizedAds,
		"ad_free":          options.WithAdFree,
	}
	if offered[s.cfg.FormChoice] {
		return s.cfg.FormChoice, true
	}
	for _, choice := range []string{"personalized", "non_personalized", "ad_free"} {
		if offered[choice] {
			return choice, true
		}
	}
	return "", false
}

func (s *Simulator) GetAdProviders(ctx context.Context) ([]consent.AdProvider, error) {
	state, err := s.store.Load(ctx, s.deviceID(ctx))
	if err != nil {
		return nil, err
	}
	if !state.InfoUpdated {
		return nil, errors.New("Consent information has not been updated. Call requestInfoUpdate first.")
	}
	providers := make([]consent.AdProvider, 0, len(s.cfg.AdProviders))
	for _, provider := range s.cfg.AdProviders {
		providers = append(providers, consent.AdProvider{
			CompanyID:        provider.CompanyID,
			CompanyName:      provider.CompanyName,
			PrivacyPolicyURL: provider.PrivacyPolicyURL,
		})
	}
	return providers, nil
}

func (s *Simulator) SetConsentStatus(ctx context.Context, status consent.Status) error {
	_, err := s.update(ctx, func(state *store.State) error {
		state.Status = status
		state.StatusSet = true
		return nil
	})
	return err
}

func (s *Simulator) GetConsentStatus(ctx context.Context) (consent.Status, error) {
	state, err := s.store.Load(ctx, s.deviceID(ctx))
	if err != nil {
		return consent.StatusUnknown, err
	}
	return s.status(state), nil
}

func (s *Simulator) SetDebugGeography(ctx context.Context, geography consent.DebugGeography) error {
	_, err := s.update(ctx, func(state *store.State) error {
		state.DebugGeography = geography
		return nil
	})
	return err
}

func (s *Simulator) SetTagForUnderAgeOfConsent(ctx context.Context, tag bool) error {
	_, err := s.update(ctx, func(state *store.State) error {
		state.TagUnderAge = tag
		return nil
	})
	return err
}

func (s *Simulator) AddTestDevices(ctx context.Context, deviceIDs []string) error {
	_, err := s.update(ctx, func(state *store.State) error {
		for _, id := range deviceIDs {
			if !state.IsTestDevice(id) {
				state.TestDevices = append(state.TestDevices, id)
			}
		}
		return nil
	})
	return err
}

func (s *Simulator) LoadAd(ctx context.Context, request ads.LoadRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := events.Event{
		InstanceID: request.InstanceID,
		AdUnitID:   request.AdUnitID,
		RequestID:  request.RequestID,
		Format:     string(request.Format),
	}

	if s.cfg.FailsToLoad(request.AdUnitID) {
		event.Type = string(ads.AdEventTypeError)
		event.Error = errors.New(s.cfg.NoFillMessage)
		s.play(event)
		return nil
	}

	s.mu.Lock()
	s.loaded[request.InstanceID] = request.RequestID
	s.mu.Unlock()

	event.Type = string(ads.AdEventTypeLoaded)
	if request.Format == ads.FormatRewarded {
		event.Type = string(ads.RewardedAdEventTypeLoaded)
	}
	s.play(event)
	return nil
}

func (s *Simulator) ShowAd(ctx context.Context, request ads.ShowRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	requestID, ok := s.loaded[request.InstanceID]
	if ok {
		delete(s.loaded, request.InstanceID)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("The ad %s has not loaded.", request.InstanceID)
	}

	base := events.Event{
		InstanceID: request.InstanceID,
		AdUnitID:   request.AdUnitID,
		RequestID:  requestID,
		Format:     string(request.Format),
	}
	sequence := []events.Event{withType(base, string(ads.AdEventTypeOpened))}
	if request.Format == ads.FormatRewarded {
		reward := withType(base, string(ads.RewardedAdEventTypeEarnedReward))
		reward.Data, _ = json.Marshal(ads.Reward{Type: s.cfg.Reward.Type, Amount: s.cfg.Reward.Amount})
		sequence = append(sequence, reward)
	}
	sequence = append(sequence, withType(base, string(ads.AdEventTypeClosed)))
	s.play(sequence...)
	return nil
}

func (s *Simulator) LoadBanner(ctx context.Context, request banner.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := events.Event{
		InstanceID: request.InstanceID,
		AdUnitID:   request.UnitID,
		Format:     bannerFormat,
	}
	if s.cfg.FailsToLoad(request.UnitID) {
		event.Type = banner.EventAdFailedToLoad
		event.Error = errors.New(s.cfg.NoFillMessage)
		s.play(event)
		return nil
	}

	event.Type = banner.EventAdLoaded
	width, height, ok := request.Size.Dimensions()
	if !ok {
		// Adaptive and fluid banners take the device width.
		width, height = 360, 50
	}
	event.Data, _ = json.Marshal(map[string]int{"width": width, "height": height})
	s.play(event)
	return nil
}

func withType(e events.Event, eventType string) events.Event {
	e.Type = eventType
	return e
}

// play emits sequence in order, after the configured delay when there is one.
func (s *Simulator) play(sequence ...events.Event) {
	emit := func() {
		for _, e := range sequence {
			if n := s.sink.Emit(e); n == 0 {
				glog.V(1).Infof("Sandbox event %q for %s had no listeners", e.Type, e.InstanceID)
			}
		}
	}
	if s.cfg.EventDelayMS <= 0 {
		emit()
		return
	}
	s.clock.AfterFunc(time.Duration(s.cfg.EventDelayMS)*time.Millisecond, emit)
}
