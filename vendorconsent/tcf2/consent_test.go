package tcf2

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prebid/go-gdpr/consentconstants"
	gdprconsent "github.com/prebid/go-gdpr/vendorconsent"
	"github.com/prebid/tcstring/bitutils/bittest"
	"github.com/prebid/tcstring/errortypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	coreOnlyConsent     = "COvFyGBOvFyGBAbAAAENAPCAAOAAAAAAAAAAAEEUACCKAAA"
	allSegmentsConsent  = "COw4XqLOw4XqLAAAAAENAXCf-v-gAAAfwIAAACngAI8AEFABgACAA4A.IAPPwAPrwA.QAPPwAPrwA.cAEAPAAAC7gAHw4AAA"
	twoRestrictions     = "COw4XqLOw4XqLAAAAAENAXCf-v-gAAAfwIAAACngAI8AIFABgACAA4SADAAgADQ.IAPPwAPrwA.QAPPwAPrwA.cAEAPAAAC7gAHw4AAA"
	publisherTCOnly     = "COw4XqLOw4XqLAAAAAENAXCAAP-gAAAfwIAAACngAI8AAA.cAEAPAAAC7gAHw4AAA"
	repeatedRestriction = "CO4yYChO4yYChCnABBDEA0CsAP_AAAAAAAYgF-wDwAUAB6AEaAK4AaYA5AC6gH_ARqAkEBQ4CuwFvgLsAX6AAAAYJABAXmKgAgLzGQAQF5joAIC8yUAEBeZSACAvMAAA.f_gAAAAAAQAA"
	countryHLConsent    = "CGL23UdMFJzvuA9ACCENAXCEAC0AAGrAAA5YA5ht7-_d_7_vd-f-nrf4_4A4hM4JCKoK4YhmAqABgAEgAA"
)

var sampleSegmentVendors = []uint16{1, 2, 3, 4, 5, 6, 19, 20, 21, 22, 23, 25, 27, 28, 29, 30}

func TestParseString(t *testing.T) {
	tests := []struct {
		description string
		consent     string
		expected    *Consent
	}{
		{
			description: "core-segment-only",
			consent:     coreOnlyConsent,
			expected: &Consent{
				CreatedAt:                       1582243059300,
				UpdatedAt:                       1582243059300,
				CmpID:                           27,
				ConsentLanguage:                 "EN",
				VendorListVersion:               15,
				TCFPolicyVersion:                2,
				SpecialFeatureOptIns:            []uint8{},
				PurposesConsent:                 []consentconstants.Purpose{1, 2, 3},
				PurposesLITransparency:          []consentconstants.Purpose{},
				PublisherCountryCode:            "AA",
				VendorConsents:                  []uint16{2, 6, 8},
				VendorLIConsents:                []uint16{2, 6, 8},
				PublisherRestrictions:           []PublisherRestriction{},
				DisclosedVendors:                []uint16{},
				AllowedVendors:                  []uint16{},
				PublisherPurposesConsent:        []consentconstants.Purpose{},
				PublisherPurposesLITransparency: []consentconstants.Purpose{},
				CustomPurposesConsent:           []uint8{},
				CustomPurposesLITransparency:    []uint8{},
			},
		},
		{
			description: "all-segments",
			consent:     allSegmentsConsent,
			expected: &Consent{
				CreatedAt:              1585246887500,
				UpdatedAt:              1585246887500,
				ConsentLanguage:        "EN",
				VendorListVersion:      23,
				TCFPolicyVersion:       2,
				UseNonStandardStacks:   true,
				SpecialFeatureOptIns:   []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 11},
				PurposesConsent:        []consentconstants.Purpose{1, 2, 3, 4, 5, 6, 7, 8, 9, 11},
				PurposesLITransparency: []consentconstants.Purpose{12, 13, 14, 15, 16, 17, 18},
				PurposeOneTreatment:    true,
				PublisherCountryCode:   "AA",
				VendorConsents:         []uint16{2, 3, 4, 5},
				VendorLIConsents:       []uint16{1, 2, 3, 4},
				PublisherRestrictions: []PublisherRestriction{
					{PurposeID: 1, RestrictionType: RequireConsent, VendorList: []uint16{1, 2, 3, 4, 5, 6, 7}},
				},
				DisclosedVendors:                sampleSegmentVendors,
				AllowedVendors:                  sampleSegmentVendors,
				PublisherPurposesConsent:        []consentconstants.Purpose{1, 13, 24},
				PublisherPurposesLITransparency: []consentconstants.Purpose{1, 2, 3},
				CustomPurposesConsent:           []uint8{2, 3, 4, 19, 20, 21, 22, 23},
				CustomPurposesLITransparency:    []uint8{5, 6, 7},
			},
		},
		{
			description: "publisher-tc-only",
			consent:     publisherTCOnly,
			expected: &Consent{
				CreatedAt:                       1585246887500,
				UpdatedAt:                       1585246887500,
				ConsentLanguage:                 "EN",
				VendorListVersion:               23,
				TCFPolicyVersion:                2,
				SpecialFeatureOptIns:            []uint8{},
				PurposesConsent:                 []consentconstants.Purpose{1, 2, 3, 4, 5, 6, 7, 8, 9, 11},
				PurposesLITransparency:          []consentconstants.Purpose{12, 13, 14, 15, 16, 17, 18},
				PurposeOneTreatment:             true,
				PublisherCountryCode:            "AA",
				VendorConsents:                  []uint16{2, 3, 4, 5},
				VendorLIConsents:                []uint16{1, 2, 3, 4},
				PublisherRestrictions:           []PublisherRestriction{},
				DisclosedVendors:                []uint16{},
				AllowedVendors:                  []uint16{},
				PublisherPurposesConsent:        []consentconstants.Purpose{1, 13, 24},
				PublisherPurposesLITransparency: []consentconstants.Purpose{1, 2, 3},
				CustomPurposesConsent:           []uint8{2, 3, 4, 19, 20, 21, 22, 23},
				CustomPurposesLITransparency:    []uint8{5, 6, 7},
			},
		},
		{
			description: "same-vendor-restricted-for-many-purposes",
			consent:     repeatedRestriction,
			expected: &Consent{
				CreatedAt:              1598511529700,
				UpdatedAt:              1598511529700,
				CmpID:                  167,
				CmpVersion:             1,
				ConsentScreen:          1,
				ConsentLanguage:        "DE",
				VendorListVersion:      52,
				TCFPolicyVersion:       2,
				IsServiceSpecific:      true,
				SpecialFeatureOptIns:   []uint8{1, 2},
				PurposesConsent:        []consentconstants.Purpose{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
				PurposesLITransparency: []consentconstants.Purpose{},
				PublisherCountryCode:   "DE",
				VendorConsents:         []uint16{40, 122, 141, 174, 211, 228, 373, 511, 565, 577, 647, 699, 735, 748, 765},
				VendorLIConsents:       []uint16{},
				PublisherRestrictions: []PublisherRestriction{
					{PurposeID: 2, RestrictionType: RequireConsent, VendorList: []uint16{755}},
					{PurposeID: 5, RestrictionType: RequireConsent, VendorList: []uint16{755}},
					{PurposeID: 6, RestrictionType: RequireConsent, VendorList: []uint16{755}},
					{PurposeID: 7, RestrictionType: RequireConsent, VendorList: []uint16{755}},
					{PurposeID: 9, RestrictionType: RequireConsent, VendorList: []uint16{755}},
					{PurposeID: 10, RestrictionType: RequireConsent, VendorList: []uint16{755}},
				},
				DisclosedVendors:                []uint16{},
				AllowedVendors:                  []uint16{},
				PublisherPurposesConsent:        []consentconstants.Purpose{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
				PublisherPurposesLITransparency: []consentconstants.Purpose{},
				CustomPurposesConsent:           []uint8{},
				CustomPurposesLITransparency:    []uint8{},
			},
		},
	}

	for _, test := range tests {
		consent, err := ParseString(test.consent)
		require.NoError(t, err, test.description)
		assert.Equal(t, test.expected, consent, test.description)
		assert.Equal(t, uint8(2), consent.Version(), test.description)
	}
}

func TestParseStringMetadata(t *testing.T) {
	consent, err := ParseString(countryHLConsent)
	require.NoError(t, err)

	assert.Equal(t, uint64(664138268500), consent.CreatedAt)
	assert.Equal(t, uint64(1297135921400), consent.UpdatedAt)
	assert.Equal(t, uint16(61), consent.CmpID)
	assert.Equal(t, uint16(2), consent.CmpVersion)
	assert.Equal(t, uint8(2), consent.ConsentScreen)
	assert.Equal(t, "EN", consent.ConsentLanguage)
	assert.Equal(t, "HL", consent.PublisherCountryCode)
	assert.Equal(t, []uint8{2}, consent.SpecialFeatureOptIns)
	assert.Equal(t, []consentconstants.Purpose{3, 5, 6, 8}, consent.PurposesConsent)
	assert.Equal(t, []consentconstants.Purpose{2, 3, 5, 7, 9, 10}, consent.PurposesLITransparency)
	assert.Len(t, consent.VendorConsents, 91)
	assert.Len(t, consent.VendorLIConsents, 32)
	assert.Empty(t, consent.PublisherRestrictions)
}

func TestParseStringMultipleRestrictions(t *testing.T) {
	consent, err := ParseString(twoRestrictions)
	require.NoError(t, err)

	expected := []PublisherRestriction{
		{PurposeID: 1, RestrictionType: RequireConsent, VendorList: []uint16{1, 2, 3, 4, 5, 6, 7}},
		{PurposeID: 2, RestrictionType: RequireConsent, VendorList: []uint16{8, 9, 10, 11, 12, 13}},
	}
	assert.Equal(t, expected, consent.PublisherRestrictions)
	assert.Equal(t, sampleSegmentVendors, consent.DisclosedVendors)
}

func TestParseStringSegmentOrder(t *testing.T) {
	const (
		core      = "COw4XqLOw4XqLAAAAAENAXCAAAAAAAAAAAAAAAAAAAAA"
		disclosed = "IFukWSQgAIQwgI0QEByFAAAAeIAACAIgSAAQAIAgEQACEABAAAgAQFAEAIAAAGBAAgAAAAQAIFAAMCQAAgAAQiRAEQAAAAANAAIAAggAIYQFAAARmggBC3ZCYzU2yIA"
		allowed   = "QFukWSQgAIQwgI0QEByFAAAAeIAACAIgSAAQAIAgEQACEABAAAgAQFAEAIAAAGBAAgAAAAQAIFAAMCQAAgAAQiRAEQAAAAANAAIAAggAIYQFAAARmggBC3ZCYzU2yIA"
		pubTC     = "YAAAAAAAAAAAAAAAAAA"
	)

	first, err := ParseString(strings.Join([]string{core, disclosed, allowed, pubTC}, "."))
	require.NoError(t, err)
	second, err := ParseString(strings.Join([]string{core, pubTC, allowed, disclosed}, "."))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.DisclosedVendors, 115)
	assert.Equal(t, first.DisclosedVendors, first.AllowedVendors)
	assert.Equal(t, []uint16{2, 6, 8, 9, 12}, first.AllowedVendors[:5])
	assert.Equal(t, uint16(733), first.AllowedVendors[len(first.AllowedVendors)-1])
	assert.Equal(t, []consentconstants.Purpose{}, first.PublisherPurposesConsent)
	assert.Equal(t, []uint8{}, first.CustomPurposesConsent)
}

func TestParseStringLastSegmentWins(t *testing.T) {
	older := new(bittest.Writer).Write(uint64(segmentTypeDisclosedVendors), 3).Write(3, 16).Bool(false).Flags(3, 1, 2, 3)
	newer := new(bittest.Writer).Write(uint64(segmentTypeDisclosedVendors), 3).Write(3, 16).Bool(false).Flags(3, 2)

	consent, err := ParseString(coreOnlyConsent + "." + older.String() + "." + newer.String())
	require.NoError(t, err)
	assert.Equal(t, []uint16{2}, consent.DisclosedVendors)
	assert.Equal(t, []uint16{}, consent.AllowedVendors)
}

// coreHeader writes the 213 fixed-width bits of a core segment.
func coreHeader(version uint64) *bittest.Writer {
	return new(bittest.Writer).
		Write(version, 6).
		Write(15000000000, 36).
		Write(15000000010, 36).
		Write(300, 12).
		Write(2, 12).
		Write(4, 6).
		Letters("FR").
		Write(40, 12).
		Write(2, 6).
		Bool(true).
		Bool(false).
		Flags(12, 1).
		Flags(24, 1, 2).
		Flags(24, 3).
		Bool(true).
		Letters("FR")
}

func TestParseConstructed(t *testing.T) {
	w := coreHeader(2)
	require.Equal(t, uint(coreHeaderBits), w.Len())

	// Vendor consents as a range section: 3 and 5-7.
	w.Write(10, 16).Bool(true).Write(2, 12)
	w.Bool(false).Write(3, 16)
	w.Bool(true).Write(5, 16).Write(7, 16)
	// Vendor legitimate interests as a bitfield.
	w.Write(4, 16).Bool(false).Flags(4, 2, 4)
	// Two publisher restrictions. The second range is reversed, so it holds no vendors.
	w.Write(2, 12)
	w.Write(3, 6).Write(2, 2).Write(1, 12).Bool(false).Write(9, 16)
	w.Write(1, 6).Write(3, 2).Write(1, 12).Bool(true).Write(20, 16).Write(18, 16)

	consent, err := Parse([][]byte{w.Bytes()})
	require.NoError(t, err)

	assert.Equal(t, uint64(1500000000000), consent.CreatedAt)
	assert.Equal(t, uint64(1500000001000), consent.UpdatedAt)
	assert.Equal(t, uint16(300), consent.CmpID)
	assert.Equal(t, uint16(2), consent.CmpVersion)
	assert.Equal(t, uint8(4), consent.ConsentScreen)
	assert.Equal(t, "FR", consent.ConsentLanguage)
	assert.Equal(t, uint16(40), consent.VendorListVersion)
	assert.Equal(t, uint8(2), consent.TCFPolicyVersion)
	assert.True(t, consent.IsServiceSpecific)
	assert.False(t, consent.UseNonStandardStacks)
	assert.Equal(t, []uint8{1}, consent.SpecialFeatureOptIns)
	assert.Equal(t, []consentconstants.Purpose{1, 2}, consent.PurposesConsent)
	assert.Equal(t, []consentconstants.Purpose{3}, consent.PurposesLITransparency)
	assert.True(t, consent.PurposeOneTreatment)
	assert.Equal(t, "FR", consent.PublisherCountryCode)
	assert.Equal(t, []uint16{3, 5, 6, 7}, consent.VendorConsents)
	assert.Equal(t, []uint16{2, 4}, consent.VendorLIConsents)
	assert.Equal(t, []PublisherRestriction{
		{PurposeID: 3, RestrictionType: RequireLegitimateInterest, VendorList: []uint16{9}},
		{PurposeID: 1, RestrictionType: Undefined, VendorList: []uint16{}},
	}, consent.PublisherRestrictions)
	assert.Equal(t, []uint16{}, consent.DisclosedVendors)
}

func TestParseErrors(t *testing.T) {
	// The vendor consents section ends on a byte boundary, so nothing follows it.
	noVendorLI := coreHeader(2).Write(2, 16).Bool(false).Flags(2, 1)
	// The vendor legitimate interests section ends on a byte boundary.
	noRestrictions := coreHeader(2).Write(0, 16).Bool(false).Write(9, 16).Bool(false).Flags(9, 9)
	truncatedVendorLI := coreHeader(2).Write(2, 16).Bool(false).Flags(2, 1).Write(0, 8)
	truncatedRestrictions := coreHeader(2).Write(0, 16).Bool(false).Write(0, 16).Bool(false).Write(1, 12)
	truncatedPublisherTC := new(bittest.Writer).Write(uint64(segmentTypePublisherTC), 3).Flags(24, 1).Flags(24)
	unknownSegment := new(bittest.Writer).Write(4, 3).Write(0, 5)
	coreSegment := new(bittest.Writer).Write(0, 3).Write(0, 5)

	tests := []struct {
		description  string
		consent      string
		expectedCode int
	}{
		{
			description:  "empty",
			consent:      "",
			expectedCode: errortypes.UnsupportedVersionErrorCode,
		},
		{
			description:  "tcf1-prefix",
			consent:      "BOEFEAyOEFEAyAHABDENAI4AAAB9vABAASA",
			expectedCode: errortypes.UnsupportedVersionErrorCode,
		},
		{
			description:  "wrong-core-version",
			consent:      coreHeader(3).Write(0, 43).String(),
			expectedCode: errortypes.UnsupportedVersionErrorCode,
		},
		{
			description:  "short-core",
			consent:      "COvFyGBOvFyGBAbAAAENAPCAAOAAAAAAAAAA",
			expectedCode: errortypes.InsufficientLengthErrorCode,
		},
		{
			description:  "trailing-dot",
			consent:      coreOnlyConsent + ".",
			expectedCode: errortypes.InsufficientLengthErrorCode,
		},
		{
			description:  "empty-middle-segment",
			consent:      coreOnlyConsent + "..cAEAPAAAC7gAHw4AAA",
			expectedCode: errortypes.InsufficientLengthErrorCode,
		},
		{
			description:  "padded-segment",
			consent:      coreOnlyConsent + ".cAEAPAAAC7gAHw4AAA==",
			expectedCode: errortypes.InvalidURLSafeBase64ErrorCode,
		},
		{
			description:  "missing-vendor-li-section",
			consent:      noVendorLI.String(),
			expectedCode: errortypes.InvalidSectionDefinitionErrorCode,
		},
		{
			description:  "missing-publisher-restrictions",
			consent:      noRestrictions.String(),
			expectedCode: errortypes.InvalidSectionDefinitionErrorCode,
		},
		{
			description:  "truncated-vendor-li-section",
			consent:      truncatedVendorLI.String(),
			expectedCode: errortypes.InsufficientLengthErrorCode,
		},
		{
			description:  "truncated-publisher-restrictions",
			consent:      truncatedRestrictions.String(),
			expectedCode: errortypes.InsufficientLengthErrorCode,
		},
		{
			description:  "truncated-publisher-tc",
			consent:      coreOnlyConsent + "." + truncatedPublisherTC.String(),
			expectedCode: errortypes.InsufficientLengthErrorCode,
		},
		{
			description:  "unknown-segment-type",
			consent:      coreOnlyConsent + "." + unknownSegment.String(),
			expectedCode: errortypes.InvalidSegmentDefinitionErrorCode,
		},
		{
			description:  "second-core-segment",
			consent:      coreOnlyConsent + "." + coreSegment.String(),
			expectedCode: errortypes.InvalidSegmentDefinitionErrorCode,
		},
		{
			description:  "bad-segment-after-valid-ones",
			consent:      allSegmentsConsent + "." + unknownSegment.String(),
			expectedCode: errortypes.InvalidSegmentDefinitionErrorCode,
		},
	}

	for _, test := range tests {
		consent, err := ParseString(test.consent)
		assert.Nil(t, consent, test.description)
		if assert.Error(t, err, test.description) {
			assert.Equal(t, test.expectedCode, errortypes.ReadCode(err), test.description)
		}
	}
}

func TestParseTruncatedCore(t *testing.T) {
	segments, err := splitSegments(coreOnlyConsent)
	require.NoError(t, err)
	core := segments[0]

	for i := 0; i < len(core)-1; i++ {
		_, err := Parse([][]byte{core[:i]})
		if assert.Error(t, err, "prefix of %d bytes", i) {
			assert.Equal(t, errortypes.InsufficientLengthErrorCode, errortypes.ReadCode(err), "prefix of %d bytes", i)
		}
	}
}

func TestParseNoSegments(t *testing.T) {
	_, err := Parse(nil)
	assert.Equal(t, errortypes.InsufficientLengthErrorCode, errortypes.ReadCode(err))
}

func TestPublisherRestrictionTypeText(t *testing.T) {
	tests := []struct {
		restrictionType PublisherRestrictionType
		expected        string
	}{
		{NotAllowed, "not_allowed"},
		{RequireConsent, "require_consent"},
		{RequireLegitimateInterest, "require_legitimate_interest"},
		{Undefined, "undefined"},
		{PublisherRestrictionType(9), "undefined"},
	}

	for _, test := range tests {
		text, err := test.restrictionType.MarshalText()
		assert.NoError(t, err)
		assert.Equal(t, test.expected, string(text))
	}
}

// The go-gdpr decoder used elsewhere in the ecosystem should agree on the fields it exposes.
func TestParseStringMatchesGoGDPR(t *testing.T) {
	for _, consentString := range []string{coreOnlyConsent, repeatedRestriction} {
		expected, err := gdprconsent.ParseString(strings.SplitN(consentString, ".", 2)[0])
		require.NoError(t, err, consentString)
		actual, err := ParseString(consentString)
		require.NoError(t, err, consentString)

		assert.Equal(t, expected.Version(), actual.Version())
		assert.Equal(t, expected.CmpID(), actual.CmpID)
		assert.Equal(t, expected.VendorListVersion(), actual.VendorListVersion)
		assert.Equal(t, uint64(expected.Created().UnixMilli()), actual.CreatedAt)
		for _, vendor := range actual.VendorConsents {
			assert.True(t, expected.VendorConsent(vendor), "vendor %d", vendor)
		}
		for _, purpose := range actual.PurposesConsent {
			assert.True(t, expected.PurposeAllowed(purpose), "purpose %d", purpose)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	consent, err := ParseString(repeatedRestriction)
	require.NoError(t, err)

	output, err := json.Marshal(consent)
	require.NoError(t, err)

	text := string(output)
	assert.Contains(t, text, `"special_feature_opt_ins":[1,2]`)
	assert.Contains(t, text, `"purposes_consent":[1,2,3,4,5,6,7,8,9,10]`)
	assert.Contains(t, text, `"purposes_li_transparency":[]`)
	assert.Contains(t, text, `"custom_purposes_consent":[]`)
	assert.Contains(t, text, `{"purpose_id":2,"restriction_type":"require_consent","vendor_list":[755]}`)
	assert.Contains(t, text, `"publisher_country_code":"DE"`)
	assert.Contains(t, text, `"disclosed_vendors":[]`)
}
