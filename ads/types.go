package ads

import "encoding/json"

// EventType names a lifecycle event emitted by the native layer for a full-screen ad.
type EventType string

// AdEventType values, shared by interstitial and rewarded ads.
const (
	AdEventTypeLoaded  EventType = "loaded"
	AdEventTypeError   EventType = "error"
	AdEventTypeOpened  EventType = "opened"
	AdEventTypeClicked EventType = "clicked"
	AdEventTypeClosed  EventType = "closed"
)

// RewardedAdEventType values, emitted by rewarded ads only.
const (
	RewardedAdEventTypeLoaded       EventType = "rewarded_loaded"
	RewardedAdEventTypeEarnedReward EventType = "rewarded_earned_reward"
)

// KnownEventType reports whether t is one of the AdEventType or RewardedAdEventType values.
func KnownEventType(t EventType) bool {
	switch t {
	case AdEventTypeLoaded, AdEventTypeError, AdEventTypeOpened, AdEventTypeClicked, AdEventTypeClosed,
		RewardedAdEventTypeLoaded, RewardedAdEventTypeEarnedReward:
		return true
	}
	return false
}

// Format tells the native layer which kind of full-screen ad a request is for.
type Format string

const (
	FormatInterstitial Format = "interstitial"
	FormatRewarded     Format = "rewarded"
)

// RequestOptions are forwarded with every load of an ad.
type RequestOptions struct {
	RequestNonPersonalizedAdsOnly bool                           `json:"requestNonPersonalizedAdsOnly,omitempty"`
	NetworkExtras                 map[string]string              `json:"networkExtras,omitempty"`
	Keywords                      []string                       `json:"keywords,omitempty"`
	ContentURL                    string                         `json:"contentUrl,omitempty"`
	Location                      []float64                      `json:"location,omitempty"`
	LocationAccuracy              *float64                       `json:"locationAccuracy,omitempty"`
	RequestAgent                  string                         `json:"requestAgent,omitempty"`
	ServerSideVerificationOptions *ServerSideVerificationOptions `json:"serverSideVerificationOptions,omitempty"`
}

// ServerSideVerificationOptions are passed to the reward callback URL of rewarded ads.
type ServerSideVerificationOptions struct {
	UserID     string `json:"userId,omitempty"`
	CustomData string `json:"customData,omitempty"`
}

type ShowOptions struct {
	ImmersiveModeEnabled bool `json:"immersiveModeEnabled,omitempty"`
}

// Reward is the payload of a rewarded_earned_reward event.
type Reward struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// LoadRequest is what crosses the bridge when an ad is loaded.
type LoadRequest struct {
	Format         Format          `json:"format"`
	InstanceID     string          `json:"instanceId"`
	RequestID      int             `json:"requestId"`
	AdUnitID       string          `json:"adUnitId"`
	RequestOptions *RequestOptions `json:"requestOptions,omitempty"`
}

// ShowRequest is what crosses the bridge when a loaded ad is shown.
type ShowRequest struct {
	Format      Format       `json:"format"`
	InstanceID  string       `json:"instanceId"`
	RequestID   int          `json:"requestId"`
	AdUnitID    string       `json:"adUnitId"`
	ShowOptions *ShowOptions `json:"showOptions,omitempty"`
}

// AdEvent is handed to listeners registered with OnAdEvent.
type AdEvent struct {
	Type  EventType
	Error error
	// Data is the raw event payload. For rewarded_earned_reward it decodes into Reward.
	Data json.RawMessage
}

// Reward decodes the payload of a rewarded_earned_reward event. It returns nil for any other event.
func (e AdEvent) Reward() *Reward {
	if e.Type != RewardedAdEventTypeEarnedReward || len(e.Data) == 0 {
		return nil
	}
	var reward Reward
	if err := json.Unmarshal(e.Data, &reward); err != nil {
		return nil
	}
	return &reward
}

type Listener func(AdEvent)
