package sections

import (
	"github.com/prebid/tcstring/bitutils"
)

// Encoding identifies how a vendor section stores its IDs.
type Encoding uint8

const (
	EncodingBitField Encoding = 0
	EncodingRange    Encoding = 1
)

// vendorHeaderBits covers the 16-bit MaxVendorId and the 1-bit IsRangeEncoding flag.
const vendorHeaderBits = 17

// VendorSection is a decoded MaxVendorId / IsRangeEncoding / payload block.
type VendorSection struct {
	Encoding    Encoding
	MaxVendorID uint16
	IDs         []uint16
	EndBit      uint
}

// ParseVendorSection parses a vendor section starting at bitStartIndex. The section begins with
// a 16-bit MaxVendorId and a 1-bit encoding flag. A BitField has one bit for every vendor in
// [1, MaxVendorId]. A RangeSection is parsed with ParseRangeSection, and MaxVendorId plays no
// part in its size.
func ParseVendorSection(data []byte, bitStartIndex uint) (VendorSection, error) {
	if err := bitutils.RequireBits(data, bitStartIndex+vendorHeaderBits); err != nil {
		return VendorSection{}, err
	}

	maxVendorID := uint16(bitutils.ReadBits(data, bitStartIndex, 16))
	payloadStart := bitStartIndex + vendorHeaderBits

	if bitutils.IsSet(data, bitStartIndex+16) {
		rangeSection, err := ParseRangeSection(data, payloadStart)
		if err != nil {
			return VendorSection{}, err
		}
		return VendorSection{
			Encoding:    EncodingRange,
			MaxVendorID: maxVendorID,
			IDs:         rangeSection.IDs,
			EndBit:      rangeSection.EndBit,
		}, nil
	}

	ids, err := bitutils.ParseBitField[uint16](data, payloadStart, uint(maxVendorID))
	if err != nil {
		return VendorSection{}, err
	}
	return VendorSection{
		Encoding:    EncodingBitField,
		MaxVendorID: maxVendorID,
		IDs:         ids,
		EndBit:      payloadStart + uint(maxVendorID),
	}, nil
}
