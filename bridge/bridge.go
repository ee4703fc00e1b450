// Package bridge defines the full surface of the native ads bridge. Each consumer package declares
// only the slice it calls; implementations satisfy all of them.
package bridge

import (
	"github.com/prebid/prebid-mobileads/ads"
	"github.com/prebid/prebid-mobileads/banner"
	"github.com/prebid/prebid-mobileads/consent"
	"github.com/prebid/prebid-mobileads/mobileads"
)

// Bridge is the opaque native module. Calls block until the native layer replies or ctx is done.
// Asynchronous ad lifecycle notifications are not returned from calls; they are delivered to an
// events.Emitter supplied by the implementation's owner.
type Bridge interface {
	consent.Native
	ads.Native
	banner.Native
	mobileads.Native
}
