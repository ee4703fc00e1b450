package consent

import (
	"fmt"
	"time"

	"github.com/prebid/go-gdpr/api"
	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/go-gdpr/vendorconsent"
)

// TCF v2 purposes needed to serve personalized ads.
const (
	purposeStoreInformation consentconstants.Purpose = 1
	purposeCreateAdsProfile consentconstants.Purpose = 3
	purposeSelectAds        consentconstants.Purpose = 4

	// maxPurpose is the highest purpose ID defined by TCF v2.
	maxPurpose consentconstants.Purpose = 10
)

// ErrorMalformedConsent is returned by DecodeTCString when the consent string cannot be used.
type ErrorMalformedConsent struct {
	Consent string
	Cause   error
}

func (e *ErrorMalformedConsent) Error() string {
	return fmt.Sprintf("malformed consent string %s: %s", e.Consent, e.Cause.Error())
}

func (e *ErrorMalformedConsent) Unwrap() error {
	return e.Cause
}

// TCFConsent is a decoded IAB TCF v2 consent string, as written by the native consent SDK once the user
// has answered the form.
type TCFConsent struct {
	EncodingVersion   uint8
	VendorListVersion uint16
	PolicyVersion     uint8
	CmpID             uint16
	LastUpdated       time.Time

	parsed api.VendorConsents
}

// DecodeTCString parses and validates consent. Only TCF v2 strings are accepted.
func DecodeTCString(consent string) (*TCFConsent, error) {
	parsed, err := vendorconsent.ParseString(consent)
	if err != nil {
		return nil, &ErrorMalformedConsent{Consent: consent, Cause: err}
	}

	if version := parsed.Version(); version != 2 {
		return nil, &ErrorMalformedConsent{
			Consent: consent,
			Cause:   fmt.Errorf("invalid encoding format version: %d", version),
		}
	}
	if policyVersion := parsed.TCFPolicyVersion(); policyVersion > 4 {
		return nil, &ErrorMalformedConsent{
			Consent: consent,
			Cause:   fmt.Errorf("invalid TCF policy version: %d", policyVersion),
		}
	}

	return &TCFConsent{
		EncodingVersion:   parsed.Version(),
		VendorListVersion: parsed.VendorListVersion(),
		PolicyVersion:     parsed.TCFPolicyVersion(),
		CmpID:             parsed.CmpID(),
		LastUpdated:       parsed.LastUpdated(),
		parsed:            parsed,
	}, nil
}

func (c *TCFConsent) PurposeAllowed(purpose consentconstants.Purpose) bool {
	return c.parsed.PurposeAllowed(purpose)
}

func (c *TCFConsent) VendorConsent(vendorID uint16) bool {
	return c.parsed.VendorConsent(vendorID)
}

// AllowedPurposes lists the purposes the user consented to, in ascending order.
func (c *TCFConsent) AllowedPurposes() []consentconstants.Purpose {
	allowed := make([]consentconstants.Purpose, 0, maxPurpose)
	for p := consentconstants.Purpose(1); p <= maxPurpose; p++ {
		if c.parsed.PurposeAllowed(p) {
			allowed = append(allowed, p)
		}
	}
	return allowed
}

// Personalized reports whether the consent allows personalized ads, which needs purposes 1, 3 and 4
// (store information, create and select personalised ads).
func (c *TCFConsent) Personalized() bool {
	return c.PurposeAllowed(purposeStoreInformation) &&
		c.PurposeAllowed(purposeCreateAdsProfile) &&
		c.PurposeAllowed(purposeSelectAds)
}
