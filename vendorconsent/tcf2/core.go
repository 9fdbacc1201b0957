package tcf2

import (
	"fmt"

	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/tcstring/bitutils"
	"github.com/prebid/tcstring/errortypes"
	"github.com/prebid/tcstring/vendorconsent/sections"
)

// coreHeaderBits is the size of the fixed-width fields at the start of the core segment.
const coreHeaderBits = 213

// The string stores timestamps in deciseconds.
const timestampScale = 100

type coreSections struct {
	vendorConsents        []uint16
	vendorLIConsents      []uint16
	publisherRestrictions []PublisherRestriction
}

func parseCoreSegment(data []byte) (*Consent, error) {
	if err := bitutils.RequireBits(data, coreHeaderBits); err != nil {
		return nil, err
	}
	if version := bitutils.ReadBits(data, 0, 6); version != 2 {
		return nil, &errortypes.UnsupportedVersion{
			Message: fmt.Sprintf("the core segment has version %d, expected 2", version),
		}
	}

	consentLanguage, err := bitutils.ParseAlphabetString(data, 108, 6, 2)
	if err != nil {
		return nil, err
	}
	specialFeatureOptIns, err := bitutils.ParseBitField[uint8](data, 140, 12)
	if err != nil {
		return nil, err
	}
	purposesConsent, err := bitutils.ParseBitField[consentconstants.Purpose](data, 152, 24)
	if err != nil {
		return nil, err
	}
	purposesLITransparency, err := bitutils.ParseBitField[consentconstants.Purpose](data, 176, 24)
	if err != nil {
		return nil, err
	}
	publisherCountryCode, err := bitutils.ParseAlphabetString(data, 201, 6, 2)
	if err != nil {
		return nil, err
	}

	vendorSections, err := parseCoreSections(data, coreHeaderBits)
	if err != nil {
		return nil, err
	}

	return &Consent{
		CreatedAt:              bitutils.ReadBits(data, 6, 36) * timestampScale,
		UpdatedAt:              bitutils.ReadBits(data, 42, 36) * timestampScale,
		CmpID:                  uint16(bitutils.ReadBits(data, 78, 12)),
		CmpVersion:             uint16(bitutils.ReadBits(data, 90, 12)),
		ConsentScreen:          uint8(bitutils.ReadBits(data, 102, 6)),
		ConsentLanguage:        consentLanguage,
		VendorListVersion:      uint16(bitutils.ReadBits(data, 120, 12)),
		TCFPolicyVersion:       uint8(bitutils.ReadBits(data, 132, 6)),
		IsServiceSpecific:      bitutils.IsSet(data, 138),
		UseNonStandardStacks:   bitutils.IsSet(data, 139),
		SpecialFeatureOptIns:   specialFeatureOptIns,
		PurposesConsent:        purposesConsent,
		PurposesLITransparency: purposesLITransparency,
		PurposeOneTreatment:    bitutils.IsSet(data, 200),
		PublisherCountryCode:   publisherCountryCode,
		VendorConsents:         vendorSections.vendorConsents,
		VendorLIConsents:       vendorSections.vendorLIConsents,
		PublisherRestrictions:  vendorSections.publisherRestrictions,

		DisclosedVendors:                []uint16{},
		AllowedVendors:                  []uint16{},
		PublisherPurposesConsent:        []consentconstants.Purpose{},
		PublisherPurposesLITransparency: []consentconstants.Purpose{},
		CustomPurposesConsent:           []uint8{},
		CustomPurposesLITransparency:    []uint8{},
	}, nil
}

// parseCoreSections decodes the vendor consents, vendor legitimate interests and publisher
// restrictions sections, which follow each other in that order with no padding.
func parseCoreSections(data []byte, bitStartIndex uint) (coreSections, error) {
	if err := requireSectionStart(data, bitStartIndex, "vendor consents"); err != nil {
		return coreSections{}, err
	}
	vendorConsents, err := sections.ParseVendorSection(data, bitStartIndex)
	if err != nil {
		return coreSections{}, err
	}

	if err := requireSectionStart(data, vendorConsents.EndBit, "vendor legitimate interests"); err != nil {
		return coreSections{}, err
	}
	vendorLIConsents, err := sections.ParseVendorSection(data, vendorConsents.EndBit)
	if err != nil {
		return coreSections{}, err
	}

	if err := requireSectionStart(data, vendorLIConsents.EndBit, "publisher restrictions"); err != nil {
		return coreSections{}, err
	}
	restrictions, _, err := parsePublisherRestrictions(data, vendorLIConsents.EndBit)
	if err != nil {
		return coreSections{}, err
	}

	return coreSections{
		vendorConsents:        vendorConsents.IDs,
		vendorLIConsents:      vendorLIConsents.IDs,
		publisherRestrictions: restrictions,
	}, nil
}

// requireSectionStart fails if the core segment has no bits left at bitIndex.
func requireSectionStart(data []byte, bitIndex uint, name string) error {
	if bitIndex >= uint(len(data))*8 {
		return &errortypes.InvalidSectionDefinition{
			Message: fmt.Sprintf("the core segment ends before the %s section at bit %d", name, bitIndex),
		}
	}
	return nil
}
