// Package banner drives inline banner ads. Rendering is done by the native layer; this package validates the
// banner description, requests the ad and routes native events to the callbacks of the Ad.
package banner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/golang/glog"

	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/errortypes"
	"github.com/prebid/prebid-mobileads/events"
)

// Native banner event types.
const (
	EventAdLoaded          = "onAdLoaded"
	EventAdFailedToLoad    = "onAdFailedToLoad"
	EventAdOpened          = "onAdOpened"
	EventAdClosed          = "onAdClosed"
	EventAdLeftApplication = "onAdLeftApplication"
	EventSizeChange        = "onSizeChange"
)

// Ad describes a banner. Callbacks are optional.
type Ad struct {
	UnitID         string
	Size           Size
	RequestOptions *ads.RequestOptions

	OnAdLoaded          func()
	OnAdFailedToLoad    func(err error)
	OnAdOpened          func()
	OnAdClosed          func()
	OnAdLeftApplication func()
}

// Request is what crosses the bridge when a banner is mounted.
type Request struct {
	InstanceID     string              `json:"instanceId"`
	UnitID         string              `json:"unitId"`
	Size           Size                `json:"size"`
	RequestOptions *ads.RequestOptions `json:"requestOptions,omitempty"`
}

// Native is the slice of the bridge used by banners.
type Native interface {
	LoadBanner(ctx context.Context, request Request) error
}

// View is a mounted banner.
type View struct {
	ad         Ad
	instanceID string
	emitter    *events.Emitter

	mu            sync.Mutex
	width, height float64
	stop          func()
}

// Mount validates ad, subscribes to its native events and asks the bridge to load it.
func Mount(ctx context.Context, native Native, emitter *events.Emitter, ad Ad) (*View, error) {
	if ad.UnitID == "" {
		return nil, &errortypes.ArgumentType{Message: "BannerAd: 'unitId' expected a non-empty string value."}
	}
	if !ad.Size.Valid() {
		return nil, &errortypes.ArgumentValue{
			Message: fmt.Sprintf("BannerAd: '%s' is an invalid size. Expected a BannerAdSize or a custom size such as '300x300'.", ad.Size),
		}
	}
	if err := ads.ValidateRequestOptions("BannerAd", ad.RequestOptions); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("BannerAd: failed to generate instance id: %v", err)
	}

	view := &View{ad: ad, instanceID: id.String(), emitter: emitter}
	if width, height, ok := ad.Size.Dimensions(); ok {
		view.width, view.height = float64(width), float64(height)
	}
	view.stop = emitter.Subscribe(view.instanceID, view.dispatch)

	err = native.LoadBanner(ctx, Request{
		InstanceID:     view.instanceID,
		UnitID:         ad.UnitID,
		Size:           ad.Size,
		RequestOptions: ad.RequestOptions,
	})
	if err != nil {
		view.stop()
		return nil, errortypes.NewBridge("bannerLoad", err)
	}
	return view, nil
}

func (v *View) InstanceID() string {
	return v.instanceID
}

// Dimensions is the last size reported by the native layer, or the static size of the banner.
func (v *View) Dimensions() (width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// Unmount stops event delivery to the banner callbacks.
func (v *View) Unmount() {
	v.stop()
}

func (v *View) dispatch(e events.Event) {
	switch e.Type {
	case EventAdLoaded:
		v.resize(e.Data)
		call(v.ad.OnAdLoaded)
	case EventSizeChange:
		v.resize(e.Data)
	case EventAdFailedToLoad:
		if v.ad.OnAdFailedToLoad != nil {
			v.ad.OnAdFailedToLoad(e.Error)
		}
	case EventAdOpened:
		call(v.ad.OnAdOpened)
	case EventAdClosed:
		call(v.ad.OnAdClosed)
	case EventAdLeftApplication:
		call(v.ad.OnAdLeftApplication)
	default:
		glog.Warningf("BannerAd %s received unknown event type %q", v.instanceID, e.Type)
	}
}

// resize applies a {"width":..,"height":..} payload. Fluid banners keep the size chosen by the native layer.
func (v *View) resize(data json.RawMessage) {
	if len(data) == 0 || v.ad.Size == SizeFluid {
		return
	}
	var dims struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &dims); err != nil || dims.Width == 0 || dims.Height == 0 {
		return
	}
	v.mu.Lock()
	v.width, v.height = dims.Width, dims.Height
	v.mu.Unlock()
}

func call(callback func()) {
	if callback != nil {
		callback()
	}
}
