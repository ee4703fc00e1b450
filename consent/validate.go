package consent

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	validator "github.com/asaskevich/govalidator"

	"github.com/prebid/prebid-mobileads/errortypes"
)

var publisherIDPattern = regexp.MustCompile(`^pub-[0-9]+$`)

// validatePublisherIDs checks a dynamically typed publisherIds argument and returns it as a []string.
// The checks run in order: sequence shape, emptiness, then each element from index 0.
// IDs not shaped like pub-0000000000000000 are still accepted and reported as warnings.
func validatePublisherIDs(publisherIDs interface{}) ([]string, []error, error) {
	const prefix = "AdsConsent.requestInfoUpdate(*) "

	ids, shape := stringSequence(publisherIDs)
	if !shape.isSequence {
		return nil, nil, &errortypes.ArgumentType{
			Message: prefix + "'publisherIds' expected an array of string values.",
		}
	}
	if shape.length == 0 {
		return nil, nil, &errortypes.ArgumentValue{
			Message: prefix + "'publisherIds' list of publisher IDs cannot be empty.",
		}
	}
	if shape.firstNonString >= 0 {
		return nil, nil, &errortypes.ArgumentType{
			Message: fmt.Sprintf("%s'publisherIds[%d]' expected a string value.", prefix, shape.firstNonString),
		}
	}

	var warnings []error
	for _, id := range ids {
		if !publisherIDPattern.MatchString(id) {
			warnings = append(warnings, &errortypes.Warning{
				Message:     fmt.Sprintf("AdsConsent.requestInfoUpdate: %q does not look like a publisher ID (pub-0000000000000000)", id),
				WarningCode: errortypes.UnrecognizedPublisherIDWarningCode,
			})
		}
	}
	return ids, warnings, nil
}

func validateTestDeviceIDs(deviceIDs interface{}) ([]string, error) {
	ids, shape := stringSequence(deviceIDs)
	if !shape.isSequence || shape.firstNonString >= 0 {
		return nil, &errortypes.ArgumentType{
			Message: "AdsConsent.addTestDevices(*) 'deviceIds' expected an array of string values.",
		}
	}
	return ids, nil
}

type sequenceShape struct {
	isSequence     bool
	length         int
	firstNonString int
}

// stringSequence inspects value without assuming its static type. Slices and arrays count as sequences,
// strings and maps do not. Interface elements are unwrapped before the string check, so []interface{}{"a"}
// passes while []interface{}{nil} fails at index 0.
func stringSequence(value interface{}) ([]string, sequenceShape) {
	if ids, ok := value.([]string); ok {
		return ids, sequenceShape{isSequence: true, length: len(ids), firstNonString: -1}
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, sequenceShape{firstNonString: -1}
	}

	shape := sequenceShape{isSequence: true, length: rv.Len(), firstNonString: -1}
	ids := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() || elem.Kind() != reflect.String {
			shape.firstNonString = i
			return nil, shape
		}
		ids = append(ids, elem.String())
	}
	return ids, shape
}

func validateFormOptions(options FormOptions) error {
	const prefix = "AdsConsent.showForm(*) "

	if !isHTTPURL(options.PrivacyPolicy) {
		return &errortypes.ArgumentValue{
			Message: prefix + "'options.privacyPolicy' expected a valid HTTP or HTTPS URL.",
		}
	}
	if !options.WithPersonalizedAds && !options.WithNonPersonalizedAds && !options.WithAdFree {
		return &errortypes.ArgumentValue{
			Message: prefix + "'options' form requires at least one option to be enabled.",
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
