package tcf2

import (
	"encoding/json"
	"strings"

	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/tcstring/bitutils"
	"github.com/prebid/tcstring/errortypes"
)

// Consent is a decoded TCF 2.0 consent string, including every optional segment it carried.
// Fields backed by an absent segment are empty, never nil.
type Consent struct {
	// CreatedAt and UpdatedAt are in milliseconds. The string stores deciseconds.
	CreatedAt              uint64                     `json:"created_at" yaml:"created_at"`
	UpdatedAt              uint64                     `json:"updated_at" yaml:"updated_at"`
	CmpID                  uint16                     `json:"cmp_id" yaml:"cmp_id"`
	CmpVersion             uint16                     `json:"cmp_version" yaml:"cmp_version"`
	ConsentScreen          uint8                      `json:"consent_screen" yaml:"consent_screen"`
	ConsentLanguage        string                     `json:"consent_language" yaml:"consent_language"`
	VendorListVersion      uint16                     `json:"vendor_list_version" yaml:"vendor_list_version"`
	TCFPolicyVersion       uint8                      `json:"tcf_policy_version" yaml:"tcf_policy_version"`
	IsServiceSpecific      bool                       `json:"is_service_specific" yaml:"is_service_specific"`
	UseNonStandardStacks   bool                       `json:"use_non_standard_stacks" yaml:"use_non_standard_stacks"`
	SpecialFeatureOptIns   []uint8                    `json:"special_feature_opt_ins" yaml:"special_feature_opt_ins"`
	PurposesConsent        []consentconstants.Purpose `json:"purposes_consent" yaml:"purposes_consent"`
	PurposesLITransparency []consentconstants.Purpose `json:"purposes_li_transparency" yaml:"purposes_li_transparency"`
	PurposeOneTreatment    bool                       `json:"purpose_one_treatment" yaml:"purpose_one_treatment"`
	PublisherCountryCode   string                     `json:"publisher_country_code" yaml:"publisher_country_code"`
	VendorConsents         []uint16                   `json:"vendor_consents" yaml:"vendor_consents"`
	VendorLIConsents       []uint16                   `json:"vendor_li_consents" yaml:"vendor_li_consents"`
	PublisherRestrictions  []PublisherRestriction     `json:"publisher_restrictions" yaml:"publisher_restrictions"`

	// Disclosed Vendors and Allowed Vendors segments
	DisclosedVendors []uint16 `json:"disclosed_vendors" yaml:"disclosed_vendors"`
	AllowedVendors   []uint16 `json:"allowed_vendors" yaml:"allowed_vendors"`

	// Publisher TC segment
	PublisherPurposesConsent        []consentconstants.Purpose `json:"publisher_purposes_consent" yaml:"publisher_purposes_consent"`
	PublisherPurposesLITransparency []consentconstants.Purpose `json:"publisher_purposes_li_transparency" yaml:"publisher_purposes_li_transparency"`
	CustomPurposesConsent           []uint8                    `json:"custom_purposes_consent" yaml:"custom_purposes_consent"`
	CustomPurposesLITransparency    []uint8                    `json:"custom_purposes_li_transparency" yaml:"custom_purposes_li_transparency"`
}

// Version returns the consent string format version, which is always 2.
func (c *Consent) Version() uint8 {
	return 2
}

// ParseString decodes a TCF 2.0 consent string: a core segment optionally followed by
// '.'-separated Disclosed Vendors, Allowed Vendors and Publisher TC segments.
func ParseString(consent string) (*Consent, error) {
	if !strings.HasPrefix(consent, "C") {
		return nil, &errortypes.UnsupportedVersion{
			Message: "TCF 2.0 consent strings must start with 'C'",
		}
	}

	segments, err := splitSegments(consent)
	if err != nil {
		return nil, err
	}
	return Parse(segments)
}

// Parse decodes a TCF 2.0 consent string whose segments have already been base64 decoded.
// segments[0] must hold the core segment.
func Parse(segments [][]byte) (*Consent, error) {
	if len(segments) == 0 {
		return nil, &errortypes.InsufficientLength{
			Message: "the consent string has no core segment",
		}
	}

	consent, err := parseCoreSegment(segments[0])
	if err != nil {
		return nil, err
	}

	optional, err := parseOptionalSegments(segments[1:])
	if err != nil {
		return nil, err
	}
	optional.mergeInto(consent)

	return consent, nil
}

// MarshalJSON writes the uint8 ID lists as arrays of numbers instead of base64 strings.
func (c Consent) MarshalJSON() ([]byte, error) {
	type consentAlias Consent
	return json.Marshal(struct {
		consentAlias
		SpecialFeatureOptIns            []int `json:"special_feature_opt_ins"`
		PurposesConsent                 []int `json:"purposes_consent"`
		PurposesLITransparency          []int `json:"purposes_li_transparency"`
		PublisherPurposesConsent        []int `json:"publisher_purposes_consent"`
		PublisherPurposesLITransparency []int `json:"publisher_purposes_li_transparency"`
		CustomPurposesConsent           []int `json:"custom_purposes_consent"`
		CustomPurposesLITransparency    []int `json:"custom_purposes_li_transparency"`
	}{
		consentAlias:                    consentAlias(c),
		SpecialFeatureOptIns:            bitutils.IntIDs(c.SpecialFeatureOptIns),
		PurposesConsent:                 bitutils.IntIDs(c.PurposesConsent),
		PurposesLITransparency:          bitutils.IntIDs(c.PurposesLITransparency),
		PublisherPurposesConsent:        bitutils.IntIDs(c.PublisherPurposesConsent),
		PublisherPurposesLITransparency: bitutils.IntIDs(c.PublisherPurposesLITransparency),
		CustomPurposesConsent:           bitutils.IntIDs(c.CustomPurposesConsent),
		CustomPurposesLITransparency:    bitutils.IntIDs(c.CustomPurposesLITransparency),
	})
}
