package consent

import "strconv"

// Status is the consent the user gave for ad personalization.
type Status int

const (
	StatusUnknown         Status = 0
	StatusNonPersonalized Status = 1
	StatusPersonalized    Status = 2
)

// Valid reports whether s is one of the AdsConsentStatus values.
func (s Status) Valid() bool {
	return s == StatusUnknown || s == StatusNonPersonalized || s == StatusPersonalized
}

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusNonPersonalized:
		return "NON_PERSONALIZED"
	case StatusPersonalized:
		return "PERSONALIZED"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// DebugGeography overrides the location the consent SDK believes the device is in. Test devices only.
type DebugGeography int

const (
	DebugGeographyDisabled DebugGeography = 0
	DebugGeographyEEA      DebugGeography = 1
	DebugGeographyNotEEA   DebugGeography = 2
)

func (g DebugGeography) Valid() bool {
	return g == DebugGeographyDisabled || g == DebugGeographyEEA || g == DebugGeographyNotEEA
}

func (g DebugGeography) String() string {
	switch g {
	case DebugGeographyDisabled:
		return "DISABLED"
	case DebugGeographyEEA:
		return "EEA"
	case DebugGeographyNotEEA:
		return "NOT_EEA"
	}
	return "DebugGeography(" + strconv.Itoa(int(g)) + ")"
}

// Info is the snapshot returned by a consent info update.
type Info struct {
	Status                          Status `json:"status"`
	IsRequestLocationInEEAOrUnknown bool   `json:"isRequestLocationInEeaOrUnknown"`
}

// FormOptions configures the consent form rendered by the native SDK.
type FormOptions struct {
	PrivacyPolicy          string `json:"privacyPolicy"`
	WithPersonalizedAds    bool   `json:"withPersonalizedAds"`
	WithNonPersonalizedAds bool   `json:"withNonPersonalizedAds"`
	WithAdFree             bool   `json:"withAdFree"`
}

// FormResult is what the user picked on the consent form.
type FormResult struct {
	Status            Status `json:"status"`
	UserPrefersAdFree bool   `json:"userPrefersAdFree"`
}

// AdProvider describes one ad technology provider listed on the consent form.
type AdProvider struct {
	CompanyID        string `json:"companyId"`
	CompanyName      string `json:"companyName"`
	PrivacyPolicyURL string `json:"privacyPolicyUrl"`
}
