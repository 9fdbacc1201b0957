package tcf2

import (
	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/tcstring/bitutils"
	"github.com/prebid/tcstring/vendorconsent/sections"
)

// PublisherRestrictionType says how a publisher restricts a purpose for a list of vendors.
type PublisherRestrictionType uint8

const (
	NotAllowed PublisherRestrictionType = iota
	RequireConsent
	RequireLegitimateInterest
	Undefined
)

func (t PublisherRestrictionType) String() string {
	switch t {
	case NotAllowed:
		return "not_allowed"
	case RequireConsent:
		return "require_consent"
	case RequireLegitimateInterest:
		return "require_legitimate_interest"
	default:
		return "undefined"
	}
}

// MarshalText writes the restriction type by name so JSON and YAML output stay readable.
func (t PublisherRestrictionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func restrictionTypeFromCode(code uint8) PublisherRestrictionType {
	switch code {
	case 0:
		return NotAllowed
	case 1:
		return RequireConsent
	case 2:
		return RequireLegitimateInterest
	default:
		return Undefined
	}
}

// PublisherRestriction applies RestrictionType to PurposeID for every vendor in VendorList.
type PublisherRestriction struct {
	PurposeID       consentconstants.Purpose `json:"purpose_id" yaml:"purpose_id"`
	RestrictionType PublisherRestrictionType `json:"restriction_type" yaml:"restriction_type"`
	VendorList      []uint16                 `json:"vendor_list" yaml:"vendor_list"`
}

// restrictionHeaderBits covers the 6-bit purpose ID and the 2-bit restriction type.
const restrictionHeaderBits = 8

// parsePublisherRestrictions parses the 12-bit NumPubRestrictions count and the entries after it.
// Each entry is a restriction header directly followed by a RangeSection. Entries keep the order
// they were encoded in. The returned uint is the index of the first bit after the section.
func parsePublisherRestrictions(data []byte, bitStartIndex uint) ([]PublisherRestriction, uint, error) {
	numRestrictions, err := bitutils.ParseUInt16(data, bitStartIndex, 12)
	if err != nil {
		return nil, 0, err
	}

	restrictions := make([]PublisherRestriction, 0, numRestrictions)
	currentOffset := bitStartIndex + 12
	for i := uint16(0); i < numRestrictions; i++ {
		if err := bitutils.RequireBits(data, currentOffset+restrictionHeaderBits); err != nil {
			return nil, 0, err
		}
		purposeID := consentconstants.Purpose(bitutils.ReadBits(data, currentOffset, 6))
		restrictionType := restrictionTypeFromCode(uint8(bitutils.ReadBits(data, currentOffset+6, 2)))

		vendors, err := sections.ParseRangeSection(data, currentOffset+restrictionHeaderBits)
		if err != nil {
			return nil, 0, err
		}
		restrictions = append(restrictions, PublisherRestriction{
			PurposeID:       purposeID,
			RestrictionType: restrictionType,
			VendorList:      vendors.IDs,
		})
		currentOffset = vendors.EndBit
	}
	return restrictions, currentOffset, nil
}
