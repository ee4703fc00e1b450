package ads

import (
	"fmt"
	"math"
	"strings"

	validator "github.com/asaskevich/govalidator"

	"github.com/prebid/prebid-mobileads/errortypes"
)

const maxContentURLLength = 512

func validateAdUnitID(method, adUnitID string) error {
	if strings.TrimSpace(adUnitID) == "" {
		return &errortypes.ArgumentType{
			Message: fmt.Sprintf("%s(*) 'adUnitId' expected a non-empty string value.", method),
		}
	}
	return nil
}

// ValidateRequestOptions checks the fields of options that the type system cannot. A nil options is valid.
func ValidateRequestOptions(method string, options *RequestOptions) error {
	if options == nil {
		return nil
	}
	prefix := method + "(_, *) 'requestOptions."

	for i, keyword := range options.Keywords {
		if keyword == "" {
			return &errortypes.ArgumentValue{
				Message: fmt.Sprintf("%skeywords[%d]' expected a non-empty string value.", prefix, i),
			}
		}
	}

	if options.ContentURL != "" {
		if !isHTTPURL(options.ContentURL) {
			return &errortypes.ArgumentValue{Message: prefix + "contentUrl' expected a valid HTTP or HTTPS url."}
		}
		if len(options.ContentURL) > maxContentURLLength {
			return &errortypes.ArgumentValue{
				Message: fmt.Sprintf("%scontentUrl' maximum length of a content URL is %d characters.", prefix, maxContentURLLength),
			}
		}
	}

	if options.Location != nil {
		if len(options.Location) != 2 {
			return &errortypes.ArgumentType{Message: prefix + "location' expected an array value containing a latitude & longitude number value."}
		}
		if lat := options.Location[0]; math.IsNaN(lat) || lat < -90 || lat > 90 {
			return &errortypes.ArgumentValue{Message: prefix + "location' latitude value must be a number between -90 and 90."}
		}
		if lng := options.Location[1]; math.IsNaN(lng) || lng < -180 || lng > 180 {
			return &errortypes.ArgumentValue{Message: prefix + "location' longitude value must be a number between -180 and 180."}
		}
	}

	if options.LocationAccuracy != nil {
		if options.Location == nil {
			return &errortypes.ArgumentValue{Message: prefix + "locationAccuracy' requires 'requestOptions.location' to be set."}
		}
		if math.IsNaN(*options.LocationAccuracy) || *options.LocationAccuracy < 0 {
			return &errortypes.ArgumentValue{Message: prefix + "locationAccuracy' expected a number greater than or equal to 0."}
		}
	}

	for key := range options.NetworkExtras {
		if key == "" {
			return &errortypes.ArgumentValue{Message: prefix + "networkExtras' keys must be non-empty strings."}
		}
	}

	return nil
}

func isHTTPURL(raw string) bool {
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return validator.IsURL(raw) && validator.IsRequestURL(raw)
}
