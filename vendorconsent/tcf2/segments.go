package tcf2

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/tcstring/bitutils"
	"github.com/prebid/tcstring/errortypes"
	"github.com/prebid/tcstring/vendorconsent/sections"
)

const segmentTypeBits = 3

// Segment type tags stored in the first 3 bits of every optional segment.
const (
	segmentTypeDisclosedVendors uint8 = 1
	segmentTypeAllowedVendors   uint8 = 2
	segmentTypePublisherTC      uint8 = 3
)

// splitSegments splits consent on '.' and decodes every piece.
func splitSegments(consent string) ([][]byte, error) {
	pieces := strings.Split(consent, ".")
	segments := make([][]byte, 0, len(pieces))
	for i, piece := range pieces {
		if piece == "" {
			return nil, &errortypes.InsufficientLength{
				Message: fmt.Sprintf("segment %d of the consent string is empty", i),
			}
		}
		data, err := base64.RawURLEncoding.DecodeString(piece)
		if err != nil {
			return nil, &errortypes.InvalidURLSafeBase64{Cause: err}
		}
		segments = append(segments, data)
	}
	return segments, nil
}

type publisherTC struct {
	purposesConsent              []consentconstants.Purpose
	purposesLITransparency       []consentconstants.Purpose
	customPurposesConsent        []uint8
	customPurposesLITransparency []uint8
}

type optionalSegments struct {
	disclosedVendors []uint16
	allowedVendors   []uint16
	publisherTC      *publisherTC
}

// parseOptionalSegments decodes every segment after the core one. When a segment type shows up
// more than once, the last one wins.
func parseOptionalSegments(segments [][]byte) (optionalSegments, error) {
	var result optionalSegments
	for i, segment := range segments {
		segmentType, err := bitutils.ParseUInt8(segment, 0, segmentTypeBits)
		if err != nil {
			return optionalSegments{}, err
		}

		switch segmentType {
		case segmentTypeDisclosedVendors, segmentTypeAllowedVendors:
			vendors, err := sections.ParseVendorSection(segment, segmentTypeBits)
			if err != nil {
				return optionalSegments{}, err
			}
			if segmentType == segmentTypeDisclosedVendors {
				result.disclosedVendors = vendors.IDs
			} else {
				result.allowedVendors = vendors.IDs
			}
		case segmentTypePublisherTC:
			pubTC, err := parsePublisherTC(segment, segmentTypeBits)
			if err != nil {
				return optionalSegments{}, err
			}
			result.publisherTC = &pubTC
		default:
			return optionalSegments{}, &errortypes.InvalidSegmentDefinition{
				Message: fmt.Sprintf("segment %d has unknown type %d", i+1, segmentType),
			}
		}
	}
	return result, nil
}

func (s optionalSegments) mergeInto(consent *Consent) {
	if s.disclosedVendors != nil {
		consent.DisclosedVendors = s.disclosedVendors
	}
	if s.allowedVendors != nil {
		consent.AllowedVendors = s.allowedVendors
	}
	if s.publisherTC != nil {
		consent.PublisherPurposesConsent = s.publisherTC.purposesConsent
		consent.PublisherPurposesLITransparency = s.publisherTC.purposesLITransparency
		consent.CustomPurposesConsent = s.publisherTC.customPurposesConsent
		consent.CustomPurposesLITransparency = s.publisherTC.customPurposesLITransparency
	}
}

// parsePublisherTC parses the Publisher TC segment body: two 24-bit purpose bitfields, a 6-bit
// NumCustomPurposes, then one bitfield of that many bits each for custom consents and custom
// legitimate interests.
func parsePublisherTC(data []byte, bitStartIndex uint) (publisherTC, error) {
	purposesConsent, err := bitutils.ParseBitField[consentconstants.Purpose](data, bitStartIndex, 24)
	if err != nil {
		return publisherTC{}, err
	}
	purposesLITransparency, err := bitutils.ParseBitField[consentconstants.Purpose](data, bitStartIndex+24, 24)
	if err != nil {
		return publisherTC{}, err
	}
	numCustomPurposes, err := bitutils.ParseUInt8(data, bitStartIndex+48, 6)
	if err != nil {
		return publisherTC{}, err
	}

	customStart := bitStartIndex + 54
	customPurposesConsent, err := bitutils.ParseBitField[uint8](data, customStart, uint(numCustomPurposes))
	if err != nil {
		return publisherTC{}, err
	}
	customPurposesLITransparency, err := bitutils.ParseBitField[uint8](data, customStart+uint(numCustomPurposes), uint(numCustomPurposes))
	if err != nil {
		return publisherTC{}, err
	}

	return publisherTC{
		purposesConsent:              purposesConsent,
		purposesLITransparency:       purposesLITransparency,
		customPurposesConsent:        customPurposesConsent,
		customPurposesLITransparency: customPurposesLITransparency,
	}, nil
}
