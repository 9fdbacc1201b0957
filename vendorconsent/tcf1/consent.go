package tcf1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/tcstring/bitutils"
	"github.com/prebid/tcstring/errortypes"
	"github.com/prebid/tcstring/vendorconsent/sections"
)

const (
	versionBits = 6
	// headerBits covers everything up to and including the IsRangeEncoding flag.
	headerBits          = 173
	isRangeEncodingBit  = 172
	vendorBitFieldStart = 173
	isBlocklistBit      = 173
	vendorRangeStart    = 174
)

// Consent is a decoded TCF 1.1 consent string.
type Consent struct {
	// CreatedAt and UpdatedAt hold the 36-bit timestamps exactly as encoded.
	CreatedAt         uint64                     `json:"created_at" yaml:"created_at"`
	UpdatedAt         uint64                     `json:"updated_at" yaml:"updated_at"`
	CmpID             uint16                     `json:"cmp_id" yaml:"cmp_id"`
	CmpVersion        uint16                     `json:"cmp_version" yaml:"cmp_version"`
	ConsentScreen     uint8                      `json:"consent_screen" yaml:"consent_screen"`
	ConsentLanguage   string                     `json:"consent_language" yaml:"consent_language"`
	VendorListVersion uint16                     `json:"vendor_list_version" yaml:"vendor_list_version"`
	PurposesConsent   []consentconstants.Purpose `json:"purposes_consent" yaml:"purposes_consent"`
	Vendors           VendorSet                  `json:"vendors" yaml:"vendors"`
}

// VendorSet lists vendor IDs. When IsBlocklist is true the listed vendors are the ones
// without consent.
type VendorSet struct {
	IsBlocklist bool     `json:"is_blocklist" yaml:"is_blocklist"`
	List        []uint16 `json:"list" yaml:"list"`
}

// Version returns the consent string format version, which is always 1.
func (c *Consent) Version() uint8 {
	return 1
}

// MarshalJSON writes PurposesConsent as an array of numbers instead of a base64 string.
func (c Consent) MarshalJSON() ([]byte, error) {
	type consentAlias Consent
	return json.Marshal(struct {
		consentAlias
		PurposesConsent []int `json:"purposes_consent"`
	}{
		consentAlias:    consentAlias(c),
		PurposesConsent: bitutils.IntIDs(c.PurposesConsent),
	})
}

// ParseString decodes a URL-safe base64 TCF 1.1 consent string.
func ParseString(consent string) (*Consent, error) {
	data, err := base64.RawURLEncoding.DecodeString(consent)
	if err != nil {
		return nil, &errortypes.InvalidURLSafeBase64{Cause: err}
	}
	return Parse(data)
}

// Parse decodes the raw bytes of a TCF 1.1 consent string.
func Parse(data []byte) (*Consent, error) {
	version, err := bitutils.ParseUInt8(data, 0, versionBits)
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, &errortypes.UnsupportedVersion{
			Message: fmt.Sprintf("the consent string encoded a Version of %d, but only 1 is supported", version),
		}
	}

	if err := bitutils.RequireBits(data, headerBits); err != nil {
		return nil, err
	}

	consentLanguage, err := bitutils.ParseAlphabetString(data, 108, 6, 2)
	if err != nil {
		return nil, err
	}
	purposesConsent, err := bitutils.ParseBitField[consentconstants.Purpose](data, 132, 24)
	if err != nil {
		return nil, err
	}
	vendors, err := parseVendors(data)
	if err != nil {
		return nil, err
	}

	return &Consent{
		CreatedAt:         bitutils.ReadBits(data, 6, 36),
		UpdatedAt:         bitutils.ReadBits(data, 42, 36),
		CmpID:             uint16(bitutils.ReadBits(data, 78, 12)),
		CmpVersion:        uint16(bitutils.ReadBits(data, 90, 12)),
		ConsentScreen:     uint8(bitutils.ReadBits(data, 102, 6)),
		ConsentLanguage:   consentLanguage,
		VendorListVersion: uint16(bitutils.ReadBits(data, 120, 12)),
		PurposesConsent:   purposesConsent,
		Vendors:           vendors,
	}, nil
}

// parseVendors reads the vendor block which follows the 16-bit MaxVendorId at bit 156.
// Bit 172 selects a BitField or a RangeSection. Only RangeSections carry the
// DefaultConsent bit, which is read here as IsBlocklist.
func parseVendors(data []byte) (VendorSet, error) {
	maxVendorID := uint(bitutils.ReadBits(data, 156, 16))

	if !bitutils.IsSet(data, isRangeEncodingBit) {
		ids, err := bitutils.ParseBitField[uint16](data, vendorBitFieldStart, maxVendorID)
		if err != nil {
			return VendorSet{}, err
		}
		return VendorSet{IsBlocklist: false, List: ids}, nil
	}

	if err := bitutils.RequireBits(data, isBlocklistBit+1); err != nil {
		return VendorSet{}, err
	}
	rangeSection, err := sections.ParseRangeSection(data, vendorRangeStart)
	if err != nil {
		return VendorSet{}, err
	}
	return VendorSet{
		IsBlocklist: bitutils.IsSet(data, isBlocklistBit),
		List:        rangeSection.IDs,
	}, nil
}
